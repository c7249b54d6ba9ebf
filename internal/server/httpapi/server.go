// Package httpapi is the JSON-over-HTTP transport of the garagekeeper server.
// It routes requests, applies the user and admin guards and maps service
// errors onto status codes.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/garagekeeper/internal/logging"
	"github.com/dmitrijs2005/garagekeeper/internal/server/auth"
	"github.com/dmitrijs2005/garagekeeper/internal/server/models"
	"github.com/dmitrijs2005/garagekeeper/internal/server/services"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

const shutdownTimeout = 10 * time.Second

type Accounts interface {
	Signup(ctx context.Context, in services.SignupInput) (*services.Session, error)
	Login(ctx context.Context, username, password string) (*services.Session, error)
	AdminCreate(ctx context.Context, actor auth.Principal, in services.CreateUserInput) (*models.User, error)
	Get(ctx context.Context, actor auth.Principal, id string) (*models.User, error)
	List(ctx context.Context, actor auth.Principal) ([]*models.User, error)
	Update(ctx context.Context, actor auth.Principal, id string, in services.UpdateUserInput) (*models.User, error)
	Delete(ctx context.Context, actor auth.Principal, id string) error
}

type Cars interface {
	Create(ctx context.Context, car *models.Car) (*models.Car, error)
	Get(ctx context.Context, id string) (*models.Car, error)
	List(ctx context.Context) ([]*models.Car, error)
	Update(ctx context.Context, id string, car *models.Car) (*models.Car, error)
	Delete(ctx context.Context, id string) error
}

type WorkOrders interface {
	Create(ctx context.Context, actor auth.Principal, in services.CreateWorkOrderInput) (*models.WorkOrder, error)
	Get(ctx context.Context, id string) (*models.WorkOrder, error)
	List(ctx context.Context, filter models.WorkOrderFilter) ([]*models.WorkOrder, error)
	Update(ctx context.Context, id string, in services.UpdateWorkOrderInput) (*models.WorkOrder, error)
	Delete(ctx context.Context, id string) error
}

type Attachments interface {
	Register(ctx context.Context, workOrderID, fileName string) (*services.AttachmentURL, error)
	Download(ctx context.Context, workOrderID, attachmentID string) (*services.AttachmentURL, error)
	List(ctx context.Context, workOrderID string) ([]*models.Attachment, error)
}

// Services bundles the business logic the handlers call into.
type Services struct {
	Accounts    Accounts
	Cars        Cars
	WorkOrders  WorkOrders
	Attachments Attachments
}

type Server struct {
	address        string
	logger         logging.Logger
	svc            Services
	guard          *Guard
	metrics        *Metrics
	allowedOrigins []string
}

func NewServer(address string, l logging.Logger, svc Services, guard *Guard, metrics *Metrics, allowedOrigins []string) *Server {
	return &Server{
		address:        address,
		logger:         l.With("module", "http_server"),
		svc:            svc,
		guard:          guard,
		metrics:        metrics,
		allowedOrigins: allowedOrigins,
	}
}

// Handler builds the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	user := s.guard.RequireUser
	admin := s.guard.RequireAdmin

	api.HandleFunc("/health", s.health).Methods(http.MethodGet)
	api.HandleFunc("/register", s.register).Methods(http.MethodPost)
	api.HandleFunc("/login", s.login).Methods(http.MethodPost)
	api.Handle("/me", user(http.HandlerFunc(s.me))).Methods(http.MethodGet)

	api.Handle("/users", admin(http.HandlerFunc(s.listUsers))).Methods(http.MethodGet)
	api.Handle("/users", admin(http.HandlerFunc(s.createUser))).Methods(http.MethodPost)
	api.Handle("/users/{id}", user(http.HandlerFunc(s.getUser))).Methods(http.MethodGet)
	api.Handle("/users/{id}", user(http.HandlerFunc(s.updateUser))).Methods(http.MethodPut)
	api.Handle("/users/{id}", admin(http.HandlerFunc(s.deleteUser))).Methods(http.MethodDelete)

	api.Handle("/cars", user(http.HandlerFunc(s.listCars))).Methods(http.MethodGet)
	api.Handle("/cars", admin(http.HandlerFunc(s.createCar))).Methods(http.MethodPost)
	api.Handle("/cars/{id}", user(http.HandlerFunc(s.getCar))).Methods(http.MethodGet)
	api.Handle("/cars/{id}", admin(http.HandlerFunc(s.updateCar))).Methods(http.MethodPut)
	api.Handle("/cars/{id}", admin(http.HandlerFunc(s.deleteCar))).Methods(http.MethodDelete)

	api.Handle("/workorders", user(http.HandlerFunc(s.listWorkOrders))).Methods(http.MethodGet)
	api.Handle("/workorders", user(http.HandlerFunc(s.createWorkOrder))).Methods(http.MethodPost)
	api.Handle("/workorders/{id}", user(http.HandlerFunc(s.getWorkOrder))).Methods(http.MethodGet)
	api.Handle("/workorders/{id}", user(http.HandlerFunc(s.updateWorkOrder))).Methods(http.MethodPut)
	api.Handle("/workorders/{id}", admin(http.HandlerFunc(s.deleteWorkOrder))).Methods(http.MethodDelete)

	api.Handle("/workorders/{id}/attachments", user(http.HandlerFunc(s.listAttachments))).Methods(http.MethodGet)
	api.Handle("/workorders/{id}/attachments", user(http.HandlerFunc(s.registerAttachment))).Methods(http.MethodPost)
	api.Handle("/workorders/{id}/attachments/{attachmentID}", user(http.HandlerFunc(s.downloadAttachment))).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(context.Background(), "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
