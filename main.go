package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/opsdesk/helpdesk/config"
	"github.com/opsdesk/helpdesk/database"
	"github.com/opsdesk/helpdesk/database/model"
	"github.com/opsdesk/helpdesk/logger"
	"github.com/opsdesk/helpdesk/web"
	"github.com/opsdesk/helpdesk/web/entity"
	"github.com/opsdesk/helpdesk/web/service"

	"github.com/dustin/go-humanize"
	"github.com/op/go-logging"
	"github.com/spf13/cobra"
)

func loadSettings() *config.Settings {
	settings, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration: ", err)
	}
	return settings
}

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

func openDB() error {
	return database.InitDB(config.GetDatabaseConfig())
}

func runWebServer() {
	settings := loadSettings()
	log.Printf("%v %v", config.GetName(), config.GetVersion())
	initLogger()
	defer logger.CloseLogger()

	if err := openDB(); err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := database.CloseDB(); err != nil {
			logger.Warning("close database err:", err)
		}
	}()

	server := web.NewServer(settings)
	if err := server.Start(); err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, os.Interrupt)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			settings = loadSettings()
			server = web.NewServer(settings)
			if err := server.Start(); err != nil {
				log.Println(err)
				return
			}
		default:
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			return
		}
	}
}

func migrateDb() {
	loadSettings()
	fmt.Println("Start migrating database...")
	if err := openDB(); err != nil {
		log.Fatal(err)
	}
	defer database.CloseDB()
	fmt.Println("Migration done!")
}

func createUser(form *entity.RegisterForm) {
	loadSettings()
	if err := openDB(); err != nil {
		fmt.Println(err)
		return
	}
	defer database.CloseDB()

	form.ConfirmPassword = form.Password
	user, err := service.NewUserService(database.GetDB(), service.DefaultPolicy()).Register(form)
	if err != nil {
		fmt.Println("create user failed:", err)
		return
	}
	fmt.Printf("created %s %s (%s, %s)\n", user.EmployeeId, user.DisplayName(), user.Email, user.Role)
}

func listUsers() {
	loadSettings()
	if err := openDB(); err != nil {
		fmt.Println(err)
		return
	}
	defer database.CloseDB()

	users, err := service.NewUserService(database.GetDB(), service.DefaultPolicy()).AllUsers()
	if err != nil {
		fmt.Println("list users failed:", err)
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMPLOYEE ID\tNAME\tEMAIL\tROLE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", u.Id, u.EmployeeId, u.DisplayName(), u.Email, u.Role, humanize.Time(u.CreatedAt))
	}
	w.Flush()
}

func showSetting() {
	s := loadSettings()
	mask := func(v string) string {
		if v == "" {
			return "(not set)"
		}
		return "******"
	}
	fmt.Println("current helpdesk settings as follows:")
	fmt.Println("listen:", s.Listen)
	fmt.Println("port:", s.Port)
	fmt.Println("base path:", s.BasePath)
	fmt.Println("db type:", s.DBType)
	if config.GetDatabaseConfig().IsSQLite() {
		fmt.Println("db path:", config.GetDBPath())
	} else {
		fmt.Println("pg dsn:", mask(s.PGDSN))
	}
	fmt.Println("secret key:", mask(s.SecretKey))
	fmt.Println("session max age (minutes):", s.SessionMaxAge)
	fmt.Println("strict ownership:", s.StrictOwnership)
	fmt.Println("login rate per minute:", s.LoginRatePerMinute)
	fmt.Println("audit retention days:", s.AuditRetentionDays)
	fmt.Println("log level:", config.GetLogLevel())
	fmt.Println("log folder:", config.GetLogFolder())
}

func main() {
	var rootCmd = &cobra.Command{
		Use: "helpdesk",
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Run: func(cmd *cobra.Command, args []string) {
			migrateDb()
		},
	}

	var userCmd = &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	form := &entity.RegisterForm{}
	var createCmd = &cobra.Command{
		Use:   "create",
		Short: "Create a user, e.g. the first admin",
		Run: func(cmd *cobra.Command, args []string) {
			createUser(form)
		},
	}
	createCmd.Flags().StringVar(&form.Email, "email", "", "login email")
	createCmd.Flags().StringVar(&form.Password, "password", "", "login password")
	createCmd.Flags().StringVar(&form.FirstName, "first-name", "", "first name")
	createCmd.Flags().StringVar(&form.LastName, "last-name", "", "last name")
	createCmd.Flags().StringVar(&form.EmployeeId, "employee-id", "", "employee id, EMP followed by 4 digits")
	createCmd.Flags().StringVar(&form.Role, "role", string(model.RoleEmployee), "employee or admin")
	for _, name := range []string{"email", "password", "first-name", "last-name", "employee-id"} {
		_ = createCmd.MarkFlagRequired(name)
	}

	var listCmd = &cobra.Command{
		Use:   "list",
		Short: "List users",
		Run: func(cmd *cobra.Command, args []string) {
			listUsers()
		},
	}
	userCmd.AddCommand(createCmd, listCmd)

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

	rootCmd.AddCommand(runCmd, migrateCmd, userCmd, settingCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
