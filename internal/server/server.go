package server

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/onlyfringe/onlyfringe/internal/logger"
	"github.com/onlyfringe/onlyfringe/internal/model"
	"github.com/onlyfringe/onlyfringe/internal/verify"
)

// Verifier is the submission pipeline as the HTTP layer sees it.
type Verifier interface {
	SubmitArgument(ctx context.Context, req verify.ArgumentRequest) (*verify.Outcome, error)
	SubmitRebuttal(ctx context.Context, req verify.RebuttalRequest) (*verify.Outcome, error)
	Retry(ctx context.Context, kind model.Kind, id string) (*verify.Outcome, error)
}

// Directory covers the read/create operations served outside the
// pipeline. *store.Store satisfies it.
type Directory interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetArgument(ctx context.Context, id string) (*model.Argument, error)
	ListArguments(ctx context.Context, status model.Status, category string) ([]model.Argument, error)
	GetRebuttal(ctx context.Context, id string) (*model.Rebuttal, error)
	Ping(ctx context.Context) error
}

type Server struct {
	pipeline  Verifier
	store     Directory
	log       logger.Logger
	aiEnabled bool
}

func New(pipeline Verifier, store Directory, log logger.Logger, aiEnabled bool) *Server {
	return &Server{
		pipeline:  pipeline,
		store:     store,
		log:       log,
		aiEnabled: aiEnabled,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	api := r.Group("/api")
	{
		api.POST("/users", s.CreateUser)
		api.GET("/users/:id", s.GetUser)

		api.GET("/arguments", s.ListArguments)
		api.GET("/arguments/:id", s.GetArgument)
		api.POST("/arguments", s.SubmitArgument)
		api.POST("/arguments/:id/rebuttals", s.SubmitRebuttal)
		api.POST("/arguments/:id/verify", s.RetryArgument)
		api.POST("/rebuttals/:id/verify", s.RetryRebuttal)

		api.GET("/health", s.Health)
	}

	return r
}
