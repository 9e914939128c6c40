package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nilsb/holtab-provisioner/internal/graph"
	"github.com/nilsb/holtab-provisioner/internal/model"
)

// GeneralFolderName is the canonical root working folder under a customer
// drive. Almost every stage depends on it.
const GeneralFolderName = "General"

// GroupName returns the canonical group display name for a customer.
func GroupName(c *model.Customer) string {
	return strings.TrimSpace(c.Name)
}

// GroupNickname returns the mail nickname used when creating the group.
func GroupNickname(c *model.Customer) string {
	return strings.ToLower(c.Type + "-" + c.ExternalID)
}

// LocateResult carries the resolved workspace ids. OK=false means the ladder
// stopped at a resource that does not exist yet; that is a state, not an
// error, and the populated ids are still valid.
type LocateResult struct {
	GroupID         string
	DriveID         string
	GeneralFolderID string
	OK              bool
}

// Locator resolves a customer's group, drive and General folder. It is a pure
// resolver over the directory service: cached ids on the record short-circuit
// lookups, and the only resource it ever creates is the General folder.
// Persisting resolved ids is the caller's job.
type Locator struct {
	dir Directory
}

func NewLocator(dir Directory) *Locator {
	return &Locator{dir: dir}
}

func (l *Locator) Locate(ctx context.Context, c *model.Customer) (LocateResult, error) {
	var res LocateResult

	res.GroupID = c.GroupID
	if res.GroupID == "" {
		g, err := l.dir.FindGroupByName(ctx, GroupName(c))
		if err != nil {
			if graph.IsNotFound(err) {
				// No group yet: the CreateGroup stage owns creating it.
				return res, nil
			}
			return res, fmt.Errorf("locate group: %w", err)
		}
		res.GroupID = g.ID
	}

	res.DriveID = c.DriveID
	if res.DriveID == "" {
		d, err := l.dir.GetGroupDrive(ctx, res.GroupID)
		if err != nil {
			if graph.IsNotFound(err) {
				// Groups regularly exist before their drive is provisioned.
				return res, nil
			}
			return res, fmt.Errorf("locate drive: %w", err)
		}
		res.DriveID = d.ID
	}

	res.GeneralFolderID = c.GeneralFolderID
	if res.GeneralFolderID == "" {
		folder, err := l.ensureGeneralFolder(ctx, res.DriveID)
		if err != nil {
			return res, err
		}
		res.GeneralFolderID = folder.ID
	}

	res.OK = true
	return res, nil
}

// ensureGeneralFolder finds the General folder at the drive root, creating it
// when missing. A create losing the race to a concurrent delivery falls back
// to the find.
func (l *Locator) ensureGeneralFolder(ctx context.Context, driveID string) (*graph.Item, error) {
	folder, err := l.dir.FindFolder(ctx, driveID, GeneralFolderName)
	if err == nil {
		return folder, nil
	}
	if !graph.IsNotFound(err) {
		return nil, fmt.Errorf("locate general folder: %w", err)
	}

	root, err := l.dir.GetDriveRoot(ctx, driveID)
	if err != nil {
		return nil, fmt.Errorf("locate drive root: %w", err)
	}

	folder, err = l.dir.CreateFolder(ctx, driveID, root.ID, GeneralFolderName)
	if err != nil {
		if graph.IsConflict(err) {
			folder, err = l.dir.FindFolder(ctx, driveID, GeneralFolderName)
			if err == nil {
				return folder, nil
			}
		}
		return nil, fmt.Errorf("create general folder: %w", err)
	}
	return folder, nil
}
