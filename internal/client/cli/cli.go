// Package cli - команды marketctl. Каждая команда - маршрут клиента:
// сначала проверка routeguard по локальной сессии, потом запрос к API.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"marketvue_backend/internal/client/apiclient"
	"marketvue_backend/internal/client/routeguard"
	"marketvue_backend/internal/client/session"
	"marketvue_backend/internal/services/dto"
)

var ErrUsage = errors.New("usage")

type App struct {
	Client   *apiclient.Client
	Sessions *session.FileStore
	Guard    *routeguard.Guard
	Out      io.Writer
}

type command struct {
	route routeguard.Route
	usage string
	run   func(ctx context.Context, a *App, args []string) error
}

var commands = map[string]command{
	"login":          {routeguard.RouteLogin, "login <email> <password>", runLogin},
	"logout":         {routeguard.RouteLogout, "logout", runLogout},
	"register":       {routeguard.RouteRegister, "register <name> <email> <password>", runRegister},
	"posts":          {routeguard.RoutePosts, "posts [-q text] [-category id] [-page n]", runPosts},
	"post":           {routeguard.RoutePost, "post <id>", runPost},
	"mine":           {routeguard.RouteMine, "mine [-page n]", runMine},
	"admin overview": {routeguard.RouteAdminOverview, "admin overview", runOverview},
	"admin pending":  {routeguard.RouteAdminPending, "admin pending", runPending},
	"admin approve":  {routeguard.RouteAdminModerate, "admin approve <user-id>", runApprove},
	"admin deny":     {routeguard.RouteAdminModerate, "admin deny <user-id>", runDeny},
}

// Usage печатает список команд.
func Usage(w io.Writer) {
	fmt.Fprintln(w, "usage: marketctl [-config file] <command>")
	for _, name := range []string{"login", "logout", "register", "posts", "post", "mine",
		"admin overview", "admin pending", "admin approve", "admin deny"} {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}

// Run находит команду, проверяет маршрут и выполняет ее.
// Редирект гварда - не ошибка: печатается цель, возвращается nil.
func (a *App) Run(ctx context.Context, args []string) error {
	name, rest, ok := lookup(args)
	if !ok {
		return ErrUsage
	}
	cmd := commands[name]

	sess, err := a.Sessions.Load()
	if err != nil {
		return err
	}

	route := cmd.route
	if name == "post" && len(rest) > 0 {
		route = route.WithPath("/publicaciones/" + rest[0])
	}
	if decision := a.Guard.Resolve(route, sess); !decision.Allowed() {
		fmt.Fprintf(a.Out, "redirect: %s\n", decision.Target)
		return nil
	}

	return cmd.run(ctx, a, rest)
}

func lookup(args []string) (string, []string, bool) {
	if len(args) == 0 {
		return "", nil, false
	}
	if args[0] == "admin" {
		if len(args) < 2 {
			return "", nil, false
		}
		name := "admin " + args[1]
		_, ok := commands[name]
		return name, args[2:], ok
	}
	_, ok := commands[args[0]]
	return args[0], args[1:], ok
}

func runLogin(ctx context.Context, a *App, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	sess, err := a.Client.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "logged in as %s (%s)\n", sess.User.Name, sess.User.Role)
	return nil
}

func runLogout(ctx context.Context, a *App, _ []string) error {
	if err := a.Client.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.Out, "logged out")
	return nil
}

func runRegister(ctx context.Context, a *App, args []string) error {
	if len(args) != 3 {
		return ErrUsage
	}
	user, err := a.Client.Register(ctx, &dto.RegisterRequest{Name: args[0], Email: args[1], Password: args[2]})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "registered %s, status %s\n", user.Email, user.Status)
	return nil
}

func listFlags(name string, args []string) (apiclient.ListOptions, error) {
	var opts apiclient.ListOptions
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.Query, "q", "", "search text")
	fs.StringVar(&opts.CategoryID, "category", "", "category id")
	fs.IntVar(&opts.Page, "page", 1, "page number")
	fs.IntVar(&opts.PageSize, "page-size", 0, "page size")
	if err := fs.Parse(args); err != nil {
		return opts, ErrUsage
	}
	return opts, nil
}

func runPosts(ctx context.Context, a *App, args []string) error {
	opts, err := listFlags("posts", args)
	if err != nil {
		return err
	}
	resp, err := a.Client.ListPosts(ctx, opts)
	if err != nil {
		return err
	}
	printPosts(a.Out, resp)
	return nil
}

func runMine(ctx context.Context, a *App, args []string) error {
	opts, err := listFlags("mine", args)
	if err != nil {
		return err
	}
	resp, err := a.Client.MyPosts(ctx, opts)
	if err != nil {
		return err
	}
	printPosts(a.Out, resp)
	return nil
}

func runPost(ctx context.Context, a *App, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	p, err := a.Client.GetPost(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "%s\n%s\n", p.Title, strings.Repeat("=", len(p.Title)))
	fmt.Fprintf(a.Out, "price:   %.0f %s\n", p.Price, p.Currency)
	fmt.Fprintf(a.Out, "seller:  %s\n", p.Seller.Name)
	fmt.Fprintf(a.Out, "status:  %s (active: %t)\n", p.ReviewStatus, p.IsActive)
	fmt.Fprintf(a.Out, "rating:  %.1f (%d reviews)\n", p.AverageRating, p.ReviewCount)
	if p.Description != "" {
		fmt.Fprintf(a.Out, "\n%s\n", p.Description)
	}
	return nil
}

func runOverview(ctx context.Context, a *App, _ []string) error {
	o, err := a.Client.Overview(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "USERS\t")
	for _, status := range []string{"PENDING", "APPROVED", "DENIED", "BLOCKED"} {
		fmt.Fprintf(w, "  %s\t%d\n", status, o.Users[status])
	}
	fmt.Fprintln(w, "POSTS\t")
	for _, status := range []string{"PENDING_REVIEW", "PUBLISHED", "REJECTED", "HIDDEN"} {
		fmt.Fprintf(w, "  %s\t%d\n", status, o.Posts.ByStatus[status])
	}
	fmt.Fprintf(w, "  active\t%d\n", o.Posts.Active)
	fmt.Fprintf(w, "  inactive\t%d\n", o.Posts.Inactive)
	return w.Flush()
}

func runPending(ctx context.Context, a *App, _ []string) error {
	users, err := a.Client.PendingUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Fprintln(a.Out, "no pending users")
		return nil
	}
	w := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tREGISTERED")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.CreatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}

func runApprove(ctx context.Context, a *App, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	u, err := a.Client.ApproveUser(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "%s is now %s\n", u.Email, u.Status)
	return nil
}

func runDeny(ctx context.Context, a *App, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	u, err := a.Client.DenyUser(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "%s is now %s\n", u.Email, u.Status)
	return nil
}

func printPosts(out io.Writer, resp *dto.PostListResponse) {
	if len(resp.Posts) == 0 {
		fmt.Fprintln(out, "no posts")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRICE\tSELLER\tSTATUS")
	for _, p := range resp.Posts {
		fmt.Fprintf(w, "%s\t%s\t%.0f %s\t%s\t%s\n", p.ID, p.Title, p.Price, p.Currency, p.Seller.Name, p.ReviewStatus)
	}
	_ = w.Flush()
	fmt.Fprintf(out, "page %d of %d, %d total\n", resp.Page, resp.TotalPages, resp.Total)
}
