package routeguard

var (
	adminRoles      = []RoleRef{Tier(1), Tier(2), Named("super administrador"), Named("administrador")}
	superAdminRoles = []RoleRef{Tier(1), Named("super administrador")}
	publisherRoles  = []RoleRef{Tier(3), Named("usuario"), Named("publisher")}
)

// Маршруты клиента. Команды marketctl называются так же.
var (
	RouteLogin         = Route{Name: "login", Path: "/login"}
	RouteRegister      = Route{Name: "register", Path: "/register"}
	RouteLogout        = Route{Name: "logout", Path: "/logout"}
	RoutePosts         = Route{Name: "posts", Path: "/publicaciones"}
	RoutePost          = Route{Name: "post", Path: "/publicaciones/:id"}
	RouteMine          = Route{Name: "mine", Path: "/panel/publicador/mis-publicaciones", AuthRequired: true, AllowedRoles: publisherRoles}
	RouteAdminOverview = Route{Name: "admin overview", Path: "/admin", AuthRequired: true, AllowedRoles: adminRoles}
	RouteAdminPending  = Route{Name: "admin pending", Path: "/admin/usuarios/pendientes", AuthRequired: true, AllowedRoles: superAdminRoles}
	RouteAdminModerate = Route{Name: "admin moderate", Path: "/admin/usuarios", AuthRequired: true, AllowedRoles: superAdminRoles}
)

// WithPath возвращает копию маршрута с подставленным путем (для :id).
func (r Route) WithPath(path string) Route {
	r.Path = path
	return r
}
