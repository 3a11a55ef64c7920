// @title           MarketVUE API
// @version         1.0
// @description     Маркетплейс объявлений с модерацией пользователей и постов.
// @contact.name    MarketVUE
// @contact.email   support@marketvue.local
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	_ "marketvue_backend/docs"
	"marketvue_backend/internal/app"
)

func main() {
	app.Run()
}
