package handler

import (
	"salachat/internal/app/msglog"
	"salachat/internal/app/presence"
	"salachat/internal/configs"
)

// AppDeps bundles the collaborators the HTTP handlers delegate to.
type AppDeps struct {
	Presence presence.Store
	Messages msglog.Log
	Config   *configs.AppConfig
}
