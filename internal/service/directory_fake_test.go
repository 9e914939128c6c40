package service

import (
	"context"
	"fmt"

	"github.com/nilsb/holtab-provisioner/internal/graph"
)

// fakeDirectory implements Directory with per-call hooks. Calls without a
// hook fail loudly so tests only exercise what they stubbed.
type fakeDirectory struct {
	findGroupByName  func(name string) (*graph.Group, error)
	createGroup      func(name, nickname string) (*graph.Group, error)
	getGroupDrive    func(groupID string) (*graph.Drive, error)
	getDriveRoot     func(driveID string) (*graph.Item, error)
	findFolder       func(driveID, path string) (*graph.Item, error)
	createFolder     func(driveID, parentID, name string) (*graph.Item, error)
	listChildren     func(driveID, folderID string) ([]graph.Item, error)
	copyItem         func(driveID, itemID, destDriveID, destFolderID, name string) error
	moveItem         func(driveID, itemID, name, destDriveID, destFolderID string) (bool, error)
	getGroupSite     func(groupID string) (*graph.Site, error)
	getDocumentList  func(siteID string) (*graph.List, error)
	getChoiceValues  func(sitePath, listName, columnName string) ([]string, error)
	createColumn     func(siteID, listID string, def graph.ColumnDefinition) error
	getUserByEmail   func(email string) (*graph.User, error)
	addGroupOwner    func(userID, groupID string) error
	findOrCreateTeam func(groupID string) (string, error)
	createOneOnOne   func(participants []string) (string, error)
	sendMessage      func(chatID, text string) error
}

func errUnexpected(op string) error { return fmt.Errorf("unexpected directory call: %s", op) }

func (f *fakeDirectory) FindGroupByName(_ context.Context, name string) (*graph.Group, error) {
	if f.findGroupByName == nil {
		return nil, errUnexpected("FindGroupByName")
	}
	return f.findGroupByName(name)
}

func (f *fakeDirectory) CreateGroup(_ context.Context, name, nickname string) (*graph.Group, error) {
	if f.createGroup == nil {
		return nil, errUnexpected("CreateGroup")
	}
	return f.createGroup(name, nickname)
}

func (f *fakeDirectory) GetGroupDrive(_ context.Context, groupID string) (*graph.Drive, error) {
	if f.getGroupDrive == nil {
		return nil, errUnexpected("GetGroupDrive")
	}
	return f.getGroupDrive(groupID)
}

func (f *fakeDirectory) GetDriveRoot(_ context.Context, driveID string) (*graph.Item, error) {
	if f.getDriveRoot == nil {
		return nil, errUnexpected("GetDriveRoot")
	}
	return f.getDriveRoot(driveID)
}

func (f *fakeDirectory) FindFolder(_ context.Context, driveID, path string) (*graph.Item, error) {
	if f.findFolder == nil {
		return nil, errUnexpected("FindFolder")
	}
	return f.findFolder(driveID, path)
}

func (f *fakeDirectory) CreateFolder(_ context.Context, driveID, parentID, name string) (*graph.Item, error) {
	if f.createFolder == nil {
		return nil, errUnexpected("CreateFolder")
	}
	return f.createFolder(driveID, parentID, name)
}

func (f *fakeDirectory) ListChildren(_ context.Context, driveID, folderID string) ([]graph.Item, error) {
	if f.listChildren == nil {
		return nil, errUnexpected("ListChildren")
	}
	return f.listChildren(driveID, folderID)
}

func (f *fakeDirectory) CopyItem(_ context.Context, driveID, itemID, destDriveID, destFolderID, name string) error {
	if f.copyItem == nil {
		return errUnexpected("CopyItem")
	}
	return f.copyItem(driveID, itemID, destDriveID, destFolderID, name)
}

func (f *fakeDirectory) MoveItem(_ context.Context, driveID, itemID, name, destDriveID, destFolderID string) (bool, error) {
	if f.moveItem == nil {
		return false, errUnexpected("MoveItem")
	}
	return f.moveItem(driveID, itemID, name, destDriveID, destFolderID)
}

func (f *fakeDirectory) GetGroupSite(_ context.Context, groupID string) (*graph.Site, error) {
	if f.getGroupSite == nil {
		return nil, errUnexpected("GetGroupSite")
	}
	return f.getGroupSite(groupID)
}

func (f *fakeDirectory) GetDocumentList(_ context.Context, siteID string) (*graph.List, error) {
	if f.getDocumentList == nil {
		return nil, errUnexpected("GetDocumentList")
	}
	return f.getDocumentList(siteID)
}

func (f *fakeDirectory) GetChoiceValues(_ context.Context, sitePath, listName, columnName string) ([]string, error) {
	if f.getChoiceValues == nil {
		return nil, errUnexpected("GetChoiceValues")
	}
	return f.getChoiceValues(sitePath, listName, columnName)
}

func (f *fakeDirectory) CreateColumn(_ context.Context, siteID, listID string, def graph.ColumnDefinition) error {
	if f.createColumn == nil {
		return errUnexpected("CreateColumn")
	}
	return f.createColumn(siteID, listID, def)
}

func (f *fakeDirectory) GetUserByEmail(_ context.Context, email string) (*graph.User, error) {
	if f.getUserByEmail == nil {
		return nil, errUnexpected("GetUserByEmail")
	}
	return f.getUserByEmail(email)
}

func (f *fakeDirectory) AddGroupOwner(_ context.Context, userID, groupID string) error {
	if f.addGroupOwner == nil {
		return errUnexpected("AddGroupOwner")
	}
	return f.addGroupOwner(userID, groupID)
}

func (f *fakeDirectory) FindOrCreateTeam(_ context.Context, groupID string) (string, error) {
	if f.findOrCreateTeam == nil {
		return "", errUnexpected("FindOrCreateTeam")
	}
	return f.findOrCreateTeam(groupID)
}

func (f *fakeDirectory) CreateOneOnOneChat(_ context.Context, participants []string) (string, error) {
	if f.createOneOnOne == nil {
		return "", errUnexpected("CreateOneOnOneChat")
	}
	return f.createOneOnOne(participants)
}

func (f *fakeDirectory) SendMessage(_ context.Context, chatID, text string) error {
	if f.sendMessage == nil {
		return errUnexpected("SendMessage")
	}
	return f.sendMessage(chatID, text)
}
