package service

import (
	"context"

	"github.com/nilsb/holtab-provisioner/internal/graph"
)

// Directory is the slice of Microsoft Graph the provisioner depends on.
// *graph.Client is the production implementation; tests substitute fakes.
type Directory interface {
	FindGroupByName(ctx context.Context, name string) (*graph.Group, error)
	CreateGroup(ctx context.Context, name, nickname string) (*graph.Group, error)
	GetGroupDrive(ctx context.Context, groupID string) (*graph.Drive, error)
	GetDriveRoot(ctx context.Context, driveID string) (*graph.Item, error)
	FindFolder(ctx context.Context, driveID, path string) (*graph.Item, error)
	CreateFolder(ctx context.Context, driveID, parentID, name string) (*graph.Item, error)
	ListChildren(ctx context.Context, driveID, folderID string) ([]graph.Item, error)
	CopyItem(ctx context.Context, driveID, itemID, destDriveID, destFolderID, name string) error
	MoveItem(ctx context.Context, driveID, itemID, name, destDriveID, destFolderID string) (bool, error)
	GetGroupSite(ctx context.Context, groupID string) (*graph.Site, error)
	GetDocumentList(ctx context.Context, siteID string) (*graph.List, error)
	GetChoiceValues(ctx context.Context, sitePath, listName, columnName string) ([]string, error)
	CreateColumn(ctx context.Context, siteID, listID string, def graph.ColumnDefinition) error
	GetUserByEmail(ctx context.Context, email string) (*graph.User, error)
	AddGroupOwner(ctx context.Context, userID, groupID string) error
	FindOrCreateTeam(ctx context.Context, groupID string) (string, error)
	CreateOneOnOneChat(ctx context.Context, participants []string) (string, error)
	SendMessage(ctx context.Context, chatID, text string) error
}

var _ Directory = (*graph.Client)(nil)
