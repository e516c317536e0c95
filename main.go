package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/op/go-logging"
	"github.com/spf13/cobra"

	"github.com/schoolhub/portal/config"
	"github.com/schoolhub/portal/logger"
	"github.com/schoolhub/portal/storage"
	"github.com/schoolhub/portal/storage/model"
	"github.com/schoolhub/portal/util/crypto"
	"github.com/schoolhub/portal/util/random"
	"github.com/schoolhub/portal/web"
	"github.com/schoolhub/portal/web/entity"

	"github.com/google/uuid"
)

func initLogger() {
	switch config.GetLogLevel() {
	case config.Debug:
		logger.InitLogger(logging.DEBUG)
	case config.Info:
		logger.InitLogger(logging.INFO)
	case config.Notice:
		logger.InitLogger(logging.NOTICE)
	case config.Warn:
		logger.InitLogger(logging.WARNING)
	case config.Error:
		logger.InitLogger(logging.ERROR)
	default:
		log.Fatal("unknown log level:", config.GetLogLevel())
	}
}

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())
	initLogger()

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatal("load settings:", err)
	}
	if settings.JWTSecret == "" {
		log.Fatal("no JWT secret configured; set jwtSecret in the settings file or PORTAL_JWT_SECRET")
	}

	server := web.NewServer(settings)
	if err := server.Start(); err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer(settings)
			if err := server.Start(); err != nil {
				log.Println(err)
				return
			}
		default:
			_ = server.Stop()
			logger.CloseLogger()
			return
		}
	}
}

// seedAdmin creates or resets the admin account directly against the
// credential store. An empty password gets a random one, printed once.
func seedAdmin(login, password string) {
	if login == "" {
		login = "admin"
	}
	generated := false
	if password == "" {
		password = random.Seq(12)
		generated = true
	}

	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		fmt.Println("hash password failed:", err)
		return
	}

	store := storage.NewStore(config.GetDataFolder())
	_, err = store.Users.Update(func(users []model.User) ([]model.User, error) {
		for i := range users {
			if users[i].Login == login {
				users[i].PasswordHash = hash
				users[i].Role = model.RoleAdmin
				return users, nil
			}
		}
		return append(users, model.User{
			Id:           uuid.NewString(),
			Login:        login,
			PasswordHash: hash,
			Role:         model.RoleAdmin,
			Group:        model.NoGroup,
		}), nil
	})
	if err != nil {
		fmt.Println("seed admin failed:", err)
		return
	}

	fmt.Println("admin account ready:", login)
	if generated {
		fmt.Println("generated password:", password)
	}
}

func showSetting() {
	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Println("load settings failed:", err)
		return
	}
	fmt.Println("current portal settings as follows:")
	fmt.Println("listen:", settings.Listen)
	fmt.Println("port:", settings.Port)
	fmt.Println("token ttl:", settings.TokenTTL())
	fmt.Println("cors origins:", settings.CORSOrigins)
	fmt.Println("data folder:", config.GetDataFolder())

	store := storage.NewStore(config.GetDataFolder())
	users, err := store.Users.Load()
	if err != nil {
		fmt.Println("load users failed:", err)
		return
	}
	for _, u := range users {
		if u.Role == model.RoleAdmin {
			fmt.Println("admin account:", entity.NewUserView(u).Login)
		}
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var rootCmd = &cobra.Command{
		Use: "portal",
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var adminCmd = &cobra.Command{
		Use:   "admin",
		Short: "Create or reset the admin account",
		Run: func(cmd *cobra.Command, args []string) {
			login, _ := cmd.Flags().GetString("login")
			password, _ := cmd.Flags().GetString("password")
			seedAdmin(login, password)
		},
	}
	adminCmd.Flags().String("login", "admin", "admin login")
	adminCmd.Flags().String("password", "", "admin password (random if empty)")

	var settingCmd = &cobra.Command{
		Use:   "setting",
		Short: "Inspect settings",
	}
	var showCmd = &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Run: func(cmd *cobra.Command, args []string) {
			showSetting()
		},
	}
	settingCmd.AddCommand(showCmd)

	rootCmd.AddCommand(runCmd, adminCmd, settingCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("execute failed:", err)
		os.Exit(1)
	}
}
