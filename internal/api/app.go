package api

import (
	"github.com/mironism/helsi/internal"
	"github.com/mironism/helsi/internal/medical"
	"github.com/mironism/helsi/internal/storage"
)

type App interface {
	Logger() internal.Logger
	UserRepo() storage.UserRepository
	LogRepo() storage.LogRepository
	DocRepo() storage.DocumentRepository
	Store() storage.Store
	Pipeline() *medical.Pipeline
}

// Application is the concrete App used by the server and the tests.
type Application struct {
	Log     internal.Logger
	Storage storage.Store
	Docs    *medical.Pipeline
}

func NewApplication(logger internal.Logger, store storage.Store, pipeline *medical.Pipeline) *Application {
	return &Application{Log: logger, Storage: store, Docs: pipeline}
}

var _ App = (*Application)(nil)

func (a *Application) Logger() internal.Logger             { return a.Log }
func (a *Application) UserRepo() storage.UserRepository    { return a.Storage }
func (a *Application) LogRepo() storage.LogRepository      { return a.Storage }
func (a *Application) DocRepo() storage.DocumentRepository { return a.Storage }
func (a *Application) Store() storage.Store                { return a.Storage }
func (a *Application) Pipeline() *medical.Pipeline         { return a.Docs }
