package api

import (
	"path"
	"path/filepath"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/vietanh2810/event-ticketing-api/docs"
	v1 "github.com/vietanh2810/event-ticketing-api/internal/api/handler/v1"
	"github.com/vietanh2810/event-ticketing-api/internal/api/middleware"
	"github.com/vietanh2810/event-ticketing-api/internal/config"
	"github.com/vietanh2810/event-ticketing-api/internal/pkg/assetstore"
	"github.com/vietanh2810/event-ticketing-api/internal/pkg/qrcode"
	"github.com/vietanh2810/event-ticketing-api/internal/pkg/tokengen"
	"github.com/vietanh2810/event-ticketing-api/internal/repository"
	"github.com/vietanh2810/event-ticketing-api/internal/repository/dao"
	"github.com/vietanh2810/event-ticketing-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	store := assetstore.New(conf.Assets.PublicRoot)
	eventHandler := s.initEventHandler(db, store)
	ticketHandler := s.initTicketHandler(db)
	s.MountHandlers(eventHandler, ticketHandler)
	s.MountAssets()

	return s
}

func (s *Server) initEventHandler(db *gorm.DB, store *assetstore.Store) *v1.EventHandler {
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db), dao.NewParticipantDAO(db))
	ticketRepo := repository.NewTicketRepository(dao.NewTicketDAO(db))
	fileAssetRepo := repository.NewFileAssetRepository(dao.NewFileAssetDAO(db))

	provisioner := service.NewTicketProvisioner(
		ticketRepo,
		tokengen.Default(),
		qrcode.NewEncoder(qrcode.DefaultOptions()),
		store,
		s.Config,
	)
	svc := service.NewEventService(eventRepo, fileAssetRepo, ticketRepo, store, provisioner, s.Config)
	handler := v1.NewEventHandler(s.Config.Assets, svc)

	return handler
}

func (s *Server) initTicketHandler(db *gorm.DB) *v1.TicketHandler {
	repo := repository.NewTicketRepository(dao.NewTicketDAO(db))
	svc := service.NewTicketService(repo)
	handler := v1.NewTicketHandler(svc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(eventHandler *v1.EventHandler, ticketHandler *v1.TicketHandler) {
	const basePath = "/api/v1"

	events := s.Router.Group(basePath)
	{
		events.GET("/events", eventHandler.HandleListEvents)
		events.POST("/events", eventHandler.HandleCreateEvent)
		events.DELETE("/events", eventHandler.HandleDeleteEvent)
		events.GET("/events/:eventID", eventHandler.HandleGetEvent)
		events.PUT("/events/:eventID", eventHandler.HandleUpdateEvent)
		events.DELETE("/events/:eventID", eventHandler.HandleDeleteEvent)
	}

	tickets := s.Router.Group(basePath)
	{
		tickets.GET("/tickets/:token", ticketHandler.HandleGetTicket)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Event Ticketing API"
	docs.SwaggerInfo.Description = "Event registration and QR ticket provisioning."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}

// MountAssets serves stored designs and ticket artifacts at the public paths
// recorded in the database.
func (s *Server) MountAssets() {
	root := s.Config.Assets.PublicRoot
	for _, dir := range []string{s.Config.Assets.UploadsDir, s.Config.Assets.TicketsDir} {
		s.Router.Static(path.Join("/", filepath.ToSlash(dir)), filepath.Join(root, dir))
	}
}
