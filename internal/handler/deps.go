package handler

import (
	"pairchat/internal/app/chat"
	"pairchat/internal/app/conversation"
	"pairchat/internal/app/directory"
	"pairchat/internal/app/message"
	"pairchat/internal/app/storage"
	"pairchat/internal/configs"
)

// AppDeps carries everything the handlers need. Backends are chosen once at startup.
type AppDeps struct {
	Hub       *chat.Hub
	Config    *configs.AppConfig
	Messages  message.Store
	Directory directory.Directory
	Blobs     storage.BlobStore
	Contacts  *conversation.Assembler
}
