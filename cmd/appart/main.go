// Command appart is a terminal client for the art-commission marketplace.
// It keeps a persisted session under the state directory, so authentication
// survives between invocations the same way it does in the mobile app.
//
// Usage:
//
//	appart <command> [flags]
//
// Commands: register, login, logout, whoami, update, mode, role, welcome,
// nav, restore, request, requests, open, offer, offers, select, feed,
// portfolio, notifications, health.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/appart/appart-client/internal/core/domain"
	"github.com/appart/appart-client/internal/core/navigation"
	"github.com/appart/appart-client/internal/core/ports"
	"github.com/appart/appart-client/internal/core/service"
	"github.com/appart/appart-client/internal/core/session"
	"github.com/appart/appart-client/internal/infrastructure/api"
	"github.com/appart/appart-client/internal/infrastructure/storage"
	"github.com/appart/appart-client/internal/pkg/config"
	"github.com/appart/appart-client/pkg/logger"
)

// app bundles everything a subcommand needs.
type app struct {
	cfg     *config.Config
	session *session.Store
	vault   *storage.Vault
	client  *api.Client
	auth    *service.AuthService
	catalog *service.CatalogService
	query   *service.CurrentUserQuery
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true})

	stateDir, err := cfg.ResolveStateDir()
	if err != nil {
		log.Fatal().Err(err).Msg("state dir unavailable")
	}

	deviceID, err := storage.DeviceID(stateDir)
	if err != nil {
		log.Warn().Err(err).Msg("device id unavailable, continuing without")
	}

	sess := session.New(storage.NewFileStore(stateDir), log)
	vault := storage.NewVault(stateDir)
	baseURL := cfg.ResolveBaseURL()

	transport := api.NewTransport(api.TransportOptions{
		Session:    sess,
		Vault:      vault,
		RefreshURL: baseURL + "/auth/refresh",
		DeviceID:   deviceID,
		Log:        log,
	})
	client := api.NewClient(baseURL, transport, cfg.HTTPTimeout, log)

	query := service.NewCurrentUserQuery(client, sess, log)
	a := &app{
		cfg:     cfg,
		session: sess,
		vault:   vault,
		client:  client,
		auth:    service.NewAuthService(client, client, sess, vault, query, log),
		catalog: service.NewCatalogService(client, log),
		query:   query,
	}

	ctx := context.Background()
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.cmdRegister(ctx, args)
	case "login":
		return a.cmdLogin(ctx, args)
	case "logout":
		a.auth.Logout()
		fmt.Println("Logged out.")
		return nil
	case "restore":
		return a.cmdRestore(ctx)
	case "whoami":
		return a.cmdWhoami(ctx)
	case "update":
		return a.cmdUpdate(ctx, args)
	case "mode":
		return a.cmdMode(args)
	case "role":
		return a.cmdRole(args)
	case "welcome":
		a.session.MarkWelcomeSeen()
		fmt.Println("Welcome screen marked as seen.")
		return nil
	case "nav":
		return a.cmdNav()
	case "request":
		return a.cmdCreateRequest(ctx, args)
	case "requests":
		return printJSON(call(ctx, a.catalog.MyRequests))
	case "open":
		return printJSON(call(ctx, a.catalog.OpenRequests))
	case "offer":
		return a.cmdCreateOffer(ctx, args)
	case "offers":
		return printJSON(call(ctx, a.catalog.MyOffers))
	case "select":
		return a.cmdSelectArtist(ctx, args)
	case "feed":
		return printJSON(call(ctx, a.catalog.Feed))
	case "portfolio":
		return a.cmdPortfolio(ctx, args)
	case "notifications":
		return printJSON(call(ctx, a.catalog.Notifications))
	case "health":
		if err := a.client.Health(ctx); err != nil {
			return err
		}
		fmt.Println("Backend reachable at", a.cfg.ResolveBaseURL())
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "Account email")
	name := fs.String("name", "", "Display name")
	username := fs.String("username", "", "Handle (optional)")
	password := fs.String("password", "", "Password, 8 characters minimum")
	role := fs.String("role", "customer", "Role: customer|artist")
	_ = fs.Parse(args)

	user, err := a.auth.Register(ctx, ports.RegisterData{
		Email:    *email,
		Name:     *name,
		Username: *username,
		Password: *password,
		Role:     domain.Role(*role),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Registered and signed in as %s (%s)\n", user.Name, user.Email)
	return nil
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Password")
	_ = fs.Parse(args)

	user, err := a.auth.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s (%s), mode %s\n", user.Name, user.Email, a.session.ActiveMode())
	return nil
}

// cmdRestore recovers tokens from the vault and validates them with a
// current-user fetch, the same cold-start path the app takes.
func (a *app) cmdRestore(ctx context.Context) error {
	found, err := a.auth.Restore()
	if err != nil {
		return err
	}
	if !found {
		fmt.Println("No stored session.")
		return nil
	}
	user, err := a.query.Get(ctx)
	if err != nil {
		return fmt.Errorf("stored session invalid: %w", err)
	}
	fmt.Printf("Session restored for %s\n", user.Email)
	return nil
}

func (a *app) cmdWhoami(ctx context.Context) error {
	user, err := a.query.Get(ctx)
	if err != nil {
		return err
	}
	return printJSON(user, nil)
}

func (a *app) cmdUpdate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	name := fs.String("name", "", "New display name")
	bio := fs.String("bio", "", "New bio")
	picture := fs.String("picture", "", "New profile picture URL")
	role := fs.String("role", "", "Commit to a role: customer|artist")
	_ = fs.Parse(args)

	var patch domain.UserPatch
	if *name != "" {
		patch.Name = name
	}
	if *bio != "" {
		patch.Bio = bio
	}
	if *picture != "" {
		patch.ProfilePictureURL = picture
	}
	if *role != "" {
		r := domain.Role(*role)
		patch.Role = &r
	}

	user, err := a.auth.UpdateProfile(ctx, patch)
	if err != nil {
		return err
	}
	return printJSON(user, nil)
}

func (a *app) cmdMode(args []string) error {
	if len(args) == 0 {
		fmt.Println(a.session.ActiveMode())
		return nil
	}
	switch domain.ActiveMode(args[0]) {
	case domain.ModeUser:
		a.session.SetActiveMode(domain.ModeUser)
	case domain.ModeArtist:
		a.session.SetActiveMode(domain.ModeArtist)
	default:
		return fmt.Errorf("mode must be %s or %s", domain.ModeUser, domain.ModeArtist)
	}
	fmt.Println("Active mode:", a.session.ActiveMode())
	return nil
}

func (a *app) cmdRole(args []string) error {
	if len(args) == 0 {
		fmt.Println("Role selected:", a.session.RoleSelected())
		return nil
	}
	switch args[0] {
	case "done":
		a.session.SetRoleSelected(true)
	case "pending":
		a.session.SetRoleSelected(false)
	default:
		return fmt.Errorf("role takes 'done' or 'pending'")
	}
	fmt.Println("Role selected:", a.session.RoleSelected())
	return nil
}

// cmdNav prints the screen flow the app would route to right now.
func (a *app) cmdNav() error {
	flow := navigation.Select(navigation.Inputs{
		SplashAcknowledged: true,
		Authenticated:      a.session.IsAuthenticated(),
		UserLoading:        a.query.Loading(),
		RoleSelected:       a.session.RoleSelected(),
		HasSeenWelcome:     a.session.HasSeenWelcome(),
	})
	fmt.Println(flow)
	return nil
}

func (a *app) cmdCreateRequest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("request", flag.ExitOnError)
	title := fs.String("title", "", "Request title")
	description := fs.String("description", "", "What you want commissioned")
	category := fs.String("category", "", "Category (optional)")
	budgetMin := fs.Float64("budget-min", 0, "Minimum budget (optional)")
	budgetMax := fs.Float64("budget-max", 0, "Maximum budget (optional)")
	_ = fs.Parse(args)

	data := domain.CreateRequestData{
		Title:       *title,
		Description: *description,
		Category:    *category,
	}
	if *budgetMin > 0 {
		data.BudgetMin = budgetMin
	}
	if *budgetMax > 0 {
		data.BudgetMax = budgetMax
	}

	req, err := a.catalog.CreateRequest(ctx, data)
	if err != nil {
		return err
	}
	return printJSON(req, nil)
}

func (a *app) cmdCreateOffer(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("offer", flag.ExitOnError)
	requestID := fs.Int64("request", 0, "Request id to bid on")
	price := fs.Float64("price", 0, "Offer price")
	days := fs.Int("days", 0, "Delivery time in days")
	message := fs.String("message", "", "Message to the customer (optional)")
	_ = fs.Parse(args)

	offer, err := a.catalog.CreateOffer(ctx, *requestID, domain.CreateOfferData{
		Price:        *price,
		DeliveryDays: *days,
		Message:      *message,
	})
	if err != nil {
		return err
	}
	return printJSON(offer, nil)
}

func (a *app) cmdSelectArtist(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("select", flag.ExitOnError)
	requestID := fs.Int64("request", 0, "Request id")
	offerID := fs.Int64("offer", 0, "Offer id to accept")
	_ = fs.Parse(args)

	req, err := a.catalog.SelectArtist(ctx, *requestID, *offerID)
	if err != nil {
		return err
	}
	return printJSON(req, nil)
}

func (a *app) cmdPortfolio(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("portfolio", flag.ExitOnError)
	artistID := fs.Int64("artist", 0, "Artist id")
	_ = fs.Parse(args)

	works, err := a.catalog.ArtistPortfolio(ctx, *artistID)
	if err != nil {
		return err
	}
	return printJSON(works, nil)
}

// call adapts a one-argument service method for printJSON.
func call[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	return fn(ctx)
}

func printJSON(v any, err error) error {
	if err != nil {
		return err
	}
	enc, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(enc))
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: appart <command> [flags]

Account:
  register   -email -name -password [-username] [-role customer|artist]
  login      -email -password
  logout
  restore
  whoami
  update     [-name] [-bio] [-picture] [-role]
  mode       [USER|ARTIST]
  role       [done|pending]
  welcome
  nav

Marketplace:
  request    -title -description [-category] [-budget-min] [-budget-max]
  requests
  open
  offer      -request -price -days [-message]
  offers
  select     -request -offer
  feed
  portfolio  -artist
  notifications
  health`)
}
