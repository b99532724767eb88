package main

import (
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"regexp"
	"strconv"

	"tixgate/src/boot"
	"tixgate/src/common"
	"tixgate/src/config"
	"tixgate/src/lib/gateway"
	"tixgate/src/middlewares"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	apiPrefix string = "/api/v1"
)

// pipeline bundles the shared components the route handlers close over.
// Everything in here is built once in main from the loaded Config.
type pipeline struct {
	cfg      *config.Config
	gateway  gateway.Client
	sessions *common.SessionStore
	issuer   *common.Issuer
}

var positiveAmount validator.Func = func(fl validator.FieldLevel) bool {
	amount, ok := fl.Field().Interface().(int64)
	if !ok {
		return false
	}
	return amount > 0
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("positiveamount", positiveAmount)
	}
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		mm := os.Getenv("MAINTENANCE_MODE")
		atoi, err := strconv.ParseBool(mm)
		if err == nil && atoi {
			log.Println("server is under maintenance")
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, "server is under maintenance")
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

func initLogger() {
	cwd, _ := os.Getwd()
	apiLogs := path.Join(cwd, "logs", "api.log")
	gin.ForceConsoleColor()

	f, _ := os.Create(apiLogs)
	gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
}

func main() {
	initLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %s", err.Error())
	}

	boot.InitDb()

	gw, err := gateway.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize payment gateway: %s", err.Error())
	}
	log.Printf("Payment gateway: %s\n", gw.Name())

	p := &pipeline{
		cfg:      cfg,
		gateway:  gw,
		sessions: common.NewSessionStore(cfg.SessionTTL),
		issuer:   common.NewIssuer(common.MailNotifier{}),
	}

	boot.InitScheduler(p.sessions)
	defer boot.StopScheduler()
	boot.InitBroker(cfg, gw, p.sessions, p.issuer)

	router := setupRouter()

	if cfg.Env == "local" {
		router.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization", gateway.SignatureHeader)
		cc.AllowOriginFunc = func(origin string) bool {
			match, _ := regexp.MatchString(cfg.AppHost, origin)
			return match
		}
		cc.AllowCredentials = true
		cc.AllowAllOrigins = false
		router.Use(cors.New(cc))
	}

	registerValidators()

	router = maintenanceModeMiddleware(router)

	paymentWebhookRoute(router, p)

	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	{
		authorized = checkoutHandlers(authorized, p)
		authorized = ticketHandlers(authorized, p)
		authorized = verificationHandlers(authorized, p)
		authorized = waitlistHandlers(authorized)
	}

	if err := router.Run(":9090"); err != nil {
		log.Fatalf("Failed to start server: %s", err)
	}
}
