package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nilsb/holtab-provisioner/internal/graph"
	"github.com/nilsb/holtab-provisioner/internal/model"
)

func TestLocateNoGroupYet(t *testing.T) {
	dir := &fakeDirectory{
		findGroupByName: func(name string) (*graph.Group, error) {
			assert.Equal(t, "Acme AB", name)
			return nil, graph.ErrNotFound
		},
	}

	res, err := NewLocator(dir).Locate(context.Background(), &model.Customer{Name: "Acme AB"})

	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Empty(t, res.GroupID)
}

func TestLocateAmbiguousGroupName(t *testing.T) {
	dir := &fakeDirectory{
		findGroupByName: func(string) (*graph.Group, error) { return nil, graph.ErrAmbiguous },
	}

	_, err := NewLocator(dir).Locate(context.Background(), &model.Customer{Name: "Acme AB"})

	require.Error(t, err)
	assert.True(t, graph.IsAmbiguous(err))
}

func TestLocateDriveNotProvisionedYet(t *testing.T) {
	dir := &fakeDirectory{
		findGroupByName: func(string) (*graph.Group, error) { return &graph.Group{ID: "g1"}, nil },
		getGroupDrive:   func(string) (*graph.Drive, error) { return nil, graph.ErrNotFound },
	}

	res, err := NewLocator(dir).Locate(context.Background(), &model.Customer{Name: "Acme AB"})

	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "g1", res.GroupID)
	assert.Empty(t, res.DriveID)
}

func TestLocateCreatesMissingGeneralFolder(t *testing.T) {
	created := false
	dir := &fakeDirectory{
		findGroupByName: func(string) (*graph.Group, error) { return &graph.Group{ID: "g1"}, nil },
		getGroupDrive:   func(string) (*graph.Drive, error) { return &graph.Drive{ID: "d1"}, nil },
		findFolder: func(driveID, path string) (*graph.Item, error) {
			assert.Equal(t, "d1", driveID)
			assert.Equal(t, "General", path)
			return nil, graph.ErrNotFound
		},
		getDriveRoot: func(string) (*graph.Item, error) { return &graph.Item{ID: "root"}, nil },
		createFolder: func(driveID, parentID, name string) (*graph.Item, error) {
			created = true
			assert.Equal(t, "root", parentID)
			assert.Equal(t, "General", name)
			return &graph.Item{ID: "f1", Name: name}, nil
		},
	}

	res, err := NewLocator(dir).Locate(context.Background(), &model.Customer{Name: "Acme AB"})

	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, res.OK)
	assert.Equal(t, LocateResult{GroupID: "g1", DriveID: "d1", GeneralFolderID: "f1", OK: true}, res)
}

func TestLocateFolderCreationRace(t *testing.T) {
	calls := 0
	dir := &fakeDirectory{
		findGroupByName: func(string) (*graph.Group, error) { return &graph.Group{ID: "g1"}, nil },
		getGroupDrive:   func(string) (*graph.Drive, error) { return &graph.Drive{ID: "d1"}, nil },
		findFolder: func(string, string) (*graph.Item, error) {
			calls++
			if calls == 1 {
				return nil, graph.ErrNotFound
			}
			return &graph.Item{ID: "f1"}, nil
		},
		getDriveRoot: func(string) (*graph.Item, error) { return &graph.Item{ID: "root"}, nil },
		createFolder: func(string, string, string) (*graph.Item, error) { return nil, graph.ErrConflict },
	}

	res, err := NewLocator(dir).Locate(context.Background(), &model.Customer{Name: "Acme AB"})

	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "f1", res.GeneralFolderID)
}

func TestLocateUsesCachedIDsWithoutDirectoryCalls(t *testing.T) {
	// A fully resolved record must not touch the directory at all: the cached
	// ids are trusted even if the resources were deleted externally.
	dir := &fakeDirectory{}
	c := &model.Customer{Name: "Acme AB", GroupID: "g1", DriveID: "d1", GeneralFolderID: "f1"}

	res, err := NewLocator(dir).Locate(context.Background(), c)

	require.NoError(t, err)
	assert.Equal(t, LocateResult{GroupID: "g1", DriveID: "d1", GeneralFolderID: "f1", OK: true}, res)
}
