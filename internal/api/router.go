package api

import (
	"fmt"      // Error wrapping
	"net/http" // HTTP status codes
	"time"     // CORS preflight cache

	"github.com/gin-contrib/cors" // CORS middleware
	"github.com/gin-gonic/gin"    // Gin web framework
	"github.com/sirupsen/logrus"  // Structured logging

	"bookkeeping/internal/auth"       // Token validation
	"bookkeeping/internal/config"     // Router settings
	"bookkeeping/internal/middleware" // Auth and logging middleware
)

// RouterArgs holds everything the router wires into handlers
type RouterArgs struct {
	Logger            *logrus.Logger
	HTTP              config.HTTPConfig
	SuperuserUsername string
	Creds             *auth.Credentials
	Users             UserDirectory
	Accounts          AccountLedger
	Orders            OrderJournal
}

// NewRouter builds the gin engine with every route mounted at the root
func NewRouter(args RouterArgs) (*gin.Engine, error) {
	log := args.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))
	if len(args.HTTP.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  args.HTTP.CORSOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders: []string{"Content-Length", "Content-Type"},
			MaxAge:        12 * time.Hour,
		}))
	}
	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies(args.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	requireAuth := middleware.JWTAuthMiddleware(args.Creds, args.SuperuserUsername)
	superOnly := middleware.SuperuserOnlyMiddleware()

	// User routes, registration and login are public
	users := r.Group("/user")
	users.POST("/register", RegisterHandler(args.Users, log))
	users.POST("/create_user_request", RegisterHandler(args.Users, log)) // Legacy alias of /register
	users.POST("/token", LoginHandler(args.Users, log))
	users.GET("/profile", requireAuth, ProfileHandler())
	users.GET("/all", requireAuth, superOnly, ListUsersHandler(args.Users, log))
	users.GET("/admin/stats", requireAuth, superOnly, StatsHandler(args.Users, log))
	users.DELETE("/:id", requireAuth, superOnly, DeleteUserHandler(args.Users, log))

	// Account routes (protected by JWT)
	accounts := r.Group("/account", requireAuth)
	accounts.GET("/", ListMyAccountsHandler(args.Accounts, log))
	accounts.POST("/", CreateAccountHandler(args.Accounts, log))
	accounts.GET("/all", superOnly, ListAllAccountsHandler(args.Accounts, log))
	accounts.GET("/user/:user_id", ListUserAccountsHandler(args.Accounts, log))
	accounts.GET("/:id", GetAccountHandler(args.Accounts, log))
	accounts.PUT("/:id", UpdateAccountHandler(args.Accounts, log))
	accounts.PUT("/reset/:id", ResetAccountHandler(args.Accounts, log))
	accounts.DELETE("/:id", DeleteAccountHandler(args.Accounts, log))

	// Order routes (protected by JWT)
	orders := r.Group("/order", requireAuth)
	orders.GET("/", ListMyOrdersHandler(args.Orders, log))
	orders.POST("/", CreateOrderHandler(args.Orders, log))
	orders.GET("/all", superOnly, ListAllOrdersHandler(args.Orders, log))
	orders.GET("/account/:account_id", ListAccountOrdersHandler(args.Orders, log))
	orders.GET("/:id", GetOrderHandler(args.Orders, log))
	orders.PUT("/:id", UpdateOrderHandler(args.Orders, log))
	orders.DELETE("/:id", DeleteOrderHandler(args.Orders, log))

	return r, nil
}
