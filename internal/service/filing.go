package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nilsb/holtab-provisioner/internal/config"
	"github.com/nilsb/holtab-provisioner/internal/graph"
	"github.com/nilsb/holtab-provisioner/internal/match"
	"github.com/nilsb/holtab-provisioner/internal/model"
)

// ErrNoMatch reports that the inbox held no document correlating with the
// order. The sweep counts it against the retry cap.
var ErrNoMatch = errors.New("no matching documents in inbox")

// Filer moves matched inbox documents into the customer's workspace folder.
type Filer struct {
	customers *CustomerService
	dir       Directory
	loc       *Locator
	cfg       *config.Config
}

func NewFiler(customers *CustomerService, dir Directory, cfg *config.Config) *Filer {
	return &Filer{
		customers: customers,
		dir:       dir,
		loc:       NewLocator(dir),
		cfg:       cfg,
	}
}

// FileOrder scans the shared inbox for documents correlating with the order
// and moves the primary plus its associated files into the order folder under
// the customer's General folder. Orders without a number file directly into
// the General folder. Returns ErrNoMatch when nothing correlates.
func (f *Filer) FileOrder(ctx context.Context, o *model.Order) error {
	c, err := f.customers.Resolve(ctx, o.CustomerNo, customerTypeFor(o))
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return fmt.Errorf("order %s: %w", o.No, ErrNoMatch)
		}
		return err
	}

	res, err := f.loc.Locate(ctx, c)
	if err != nil {
		return err
	}
	if !res.OK {
		return fmt.Errorf("order %s: workspace not provisioned yet: %w", o.No, graph.ErrNotAvailable)
	}

	inbox, err := f.dir.FindFolder(ctx, f.cfg.MailboxDriveID, f.cfg.InboxFolder)
	if err != nil {
		return fmt.Errorf("resolve inbox: %w", err)
	}
	items, err := f.dir.ListChildren(ctx, f.cfg.MailboxDriveID, inbox.ID)
	if err != nil {
		return fmt.Errorf("scan inbox: %w", err)
	}

	cutoff := time.Now().AddDate(0, -f.cfg.HistoryMonths, 0)
	byName := make(map[string]graph.Item)
	var names []string
	for _, item := range items {
		if item.IsFolder() {
			continue
		}
		if !item.LastModified.IsZero() && item.LastModified.Before(cutoff) {
			continue
		}
		byName[item.Name] = item
		names = append(names, item.Name)
	}

	number := o.No
	if number == "" {
		number = o.CustomerNo
	}
	primary := match.SelectPrimary(names, number, o.Title != "")
	if primary == "" {
		return fmt.Errorf("order %s: %w", o.No, ErrNoMatch)
	}
	associated := match.Associated(names, primary)

	destFolderID := res.GeneralFolderID
	if o.No != "" {
		dest, err := f.ensureOrderFolder(ctx, res.DriveID, res.GeneralFolderID, o.No)
		if err != nil {
			return err
		}
		destFolderID = dest.ID
	}

	for _, name := range append([]string{primary}, associated...) {
		item := byName[name]
		moved, err := f.dir.MoveItem(ctx, f.cfg.MailboxDriveID, item.ID, item.Name, res.DriveID, destFolderID)
		if err != nil {
			return fmt.Errorf("move %s: %w", item.Name, err)
		}
		if !moved {
			slog.Warn("item not moved", "name", item.Name, "order", o.No)
		}
	}

	slog.Info("order documents filed",
		"order", o.No, "customer", o.CustomerNo, "primary", primary, "associated", len(associated))
	return nil
}

// NotifyUnmatched tells the sender over a one-on-one chat that their mail
// could not be matched to any order or customer workspace.
func (f *Filer) NotifyUnmatched(ctx context.Context, o *model.Order) error {
	if o.Sender == "" {
		return nil
	}
	u, err := f.dir.GetUserByEmail(ctx, o.Sender)
	if err != nil {
		return fmt.Errorf("resolve sender: %w", err)
	}
	chatID, err := f.dir.CreateOneOnOneChat(ctx, []string{u.ID})
	if err != nil {
		return fmt.Errorf("open chat: %w", err)
	}

	subject := o.Title
	if subject == "" {
		subject = o.Filename
	}
	text := fmt.Sprintf("Your mail %q could not be matched to an order or customer workspace. Please file the attachments manually.", subject)
	if err := f.dir.SendMessage(ctx, chatID, text); err != nil {
		return fmt.Errorf("send chat message: %w", err)
	}
	return nil
}

func (f *Filer) ensureOrderFolder(ctx context.Context, driveID, parentID, name string) (*graph.Item, error) {
	folder, err := f.dir.FindFolder(ctx, driveID, GeneralFolderName+"/"+name)
	if err == nil {
		return folder, nil
	}
	if !graph.IsNotFound(err) {
		return nil, fmt.Errorf("find order folder: %w", err)
	}

	folder, err = f.dir.CreateFolder(ctx, driveID, parentID, name)
	if err != nil {
		return nil, fmt.Errorf("create order folder: %w", err)
	}
	return folder, nil
}

func customerTypeFor(o *model.Order) string {
	if o.Type != "" {
		return o.Type
	}
	return model.TypeCustomer
}
