package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nilsb/holtab-provisioner/internal/config"
	"github.com/nilsb/holtab-provisioner/internal/graph"
	"github.com/nilsb/holtab-provisioner/internal/model"
)

// Disposition is the outcome a stage reports to the message transport.
type Disposition int

const (
	// Accepted: stage complete or idempotent no-op. Delete the message.
	Accepted Disposition = iota
	// Retryable: a prerequisite is not visible yet or the directory service
	// failed transiently. Redeliver.
	Retryable
	// Rejected: unresolvable input. Do not redeliver.
	Rejected
)

func (d Disposition) String() string {
	switch d {
	case Accepted:
		return "accepted"
	case Retryable:
		return "retryable"
	default:
		return "rejected"
	}
}

// Provisioner runs the provisioning stages. Every stage is invoked once per
// delivered message, re-resolves all state from the customer record and
// performs exactly one idempotent side effect.
type Provisioner struct {
	customers *CustomerService
	dir       Directory
	loc       *Locator
	cfg       *config.Config
}

func NewProvisioner(customers *CustomerService, dir Directory, cfg *config.Config) *Provisioner {
	return &Provisioner{
		customers: customers,
		dir:       dir,
		loc:       NewLocator(dir),
		cfg:       cfg,
	}
}

// resolveCustomer is step one of every stage: a customer that does not exist
// is unresolvable input, not a transient condition.
func (p *Provisioner) resolveCustomer(ctx context.Context, msg model.ProvisioningMessage) (*model.Customer, error) {
	c, err := p.customers.Resolve(ctx, msg.ExternalID, msg.Type)
	if err != nil {
		return nil, err
	}
	if c.Name == "" {
		c.Name = msg.Name
	}
	return c, nil
}

// disposition maps an error onto the transport outcome. Name collisions are
// rejected for manual resolution; everything else from the directory service
// is worth a redelivery.
func disposition(err error) Disposition {
	switch {
	case errors.Is(err, ErrCustomerNotFound):
		return Rejected
	case graph.IsAmbiguous(err):
		return Rejected
	default:
		return Retryable
	}
}

// CreateGroup provisions the group, its drive lookup and the General folder,
// then persists the resolved ids and completion flags.
func (p *Provisioner) CreateGroup(ctx context.Context, msg model.ProvisioningMessage) (Disposition, error) {
	c, err := p.resolveCustomer(ctx, msg)
	if err != nil {
		return disposition(err), err
	}
	if c.GroupCreated && c.GeneralFolderCreated {
		return Accepted, nil
	}

	res, err := p.loc.Locate(ctx, c)
	if err != nil {
		return disposition(err), err
	}

	if !res.OK && res.GroupID == "" {
		g, err := p.dir.CreateGroup(ctx, GroupName(c), GroupNickname(c))
		if err != nil {
			return disposition(err), err
		}
		c.GroupID = g.ID
		if err := p.customers.SaveProgress(ctx, c); err != nil {
			return Retryable, err
		}
		// The drive usually lags group creation; an incomplete ladder here
		// is the normal case, finished on redelivery.
		res, err = p.loc.Locate(ctx, c)
		if err != nil {
			return disposition(err), err
		}
	}

	if !res.OK {
		if res.GroupID != "" {
			c.GroupID = res.GroupID
			if err := p.customers.SaveProgress(ctx, c); err != nil {
				return Retryable, err
			}
		}
		return Retryable, nil
	}

	c.GroupID = res.GroupID
	c.DriveID = res.DriveID
	c.GeneralFolderID = res.GeneralFolderID
	c.GroupCreated = true
	c.GeneralFolderCreated = true
	if err := p.customers.SaveProgress(ctx, c); err != nil {
		return Retryable, err
	}
	return Accepted, nil
}

// CopyRootStructure duplicates the per-type template folder tree into the
// customer's General folder. Children already present are skipped, so a
// partial earlier attempt is resumed rather than duplicated.
func (p *Provisioner) CopyRootStructure(ctx context.Context, msg model.ProvisioningMessage) (Disposition, error) {
	c, err := p.resolveCustomer(ctx, msg)
	if err != nil {
		return disposition(err), err
	}

	res, err := p.loc.Locate(ctx, c)
	if err != nil {
		return disposition(err), err
	}
	if !res.OK {
		return Retryable, nil
	}
	if c.CopiedRootStructure {
		return Accepted, nil
	}

	template, err := p.dir.FindFolder(ctx, p.cfg.TemplateDriveID, p.cfg.TemplateFolder(c.Type))
	if err != nil {
		return disposition(err), err
	}
	children, err := p.dir.ListChildren(ctx, p.cfg.TemplateDriveID, template.ID)
	if err != nil {
		return disposition(err), err
	}

	existing, err := p.dir.ListChildren(ctx, res.DriveID, res.GeneralFolderID)
	if err != nil {
		return disposition(err), err
	}
	present := make(map[string]bool, len(existing))
	for _, item := range existing {
		present[item.Name] = true
	}

	for _, child := range children {
		if present[child.Name] {
			continue
		}
		err := p.dir.CopyItem(ctx, p.cfg.TemplateDriveID, child.ID, res.DriveID, res.GeneralFolderID, child.Name)
		if err != nil && !graph.IsConflict(err) {
			return disposition(err), err
		}
	}

	c.GroupID, c.DriveID, c.GeneralFolderID = res.GroupID, res.DriveID, res.GeneralFolderID
	c.CopiedRootStructure = true
	c.GeneralFolderCreated = true
	if err := p.customers.SaveProgress(ctx, c); err != nil {
		return Retryable, err
	}
	return Accepted, nil
}

// CreateColumns adds the custom metadata columns to the workspace document
// library. Each column is attempted independently and tracked by its own
// flag, so one failing column never blocks the others; the stage reports
// Retryable until every column exists.
func (p *Provisioner) CreateColumns(ctx context.Context, msg model.ProvisioningMessage) (Disposition, error) {
	c, err := p.resolveCustomer(ctx, msg)
	if err != nil {
		return disposition(err), err
	}

	res, err := p.loc.Locate(ctx, c)
	if err != nil {
		return disposition(err), err
	}
	if !res.OK {
		return Retryable, nil
	}
	if c.ColumnsCreated() {
		return Accepted, nil
	}

	site, err := p.dir.GetGroupSite(ctx, res.GroupID)
	if err != nil {
		return disposition(err), err
	}
	list, err := p.dir.GetDocumentList(ctx, site.ID)
	if err != nil {
		return disposition(err), err
	}

	if !c.ColumnAdditionalInfo {
		c.ColumnAdditionalInfo = p.createColumn(ctx, site.ID, list.ID, graph.ColumnDefinition{
			Name: "AdditionalInfo",
			Text: true,
		})
	}
	if !c.ColumnKundnummer {
		c.ColumnKundnummer = p.createColumn(ctx, site.ID, list.ID, graph.ColumnDefinition{
			Name:         "Kundnummer",
			Text:         true,
			DefaultValue: c.ExternalID,
		})
	}
	if !c.ColumnNAVid {
		c.ColumnNAVid = p.createColumn(ctx, site.ID, list.ID, graph.ColumnDefinition{
			Name: "NAVid",
			Text: true,
		})
	}
	if !c.ColumnProduktionsdokument {
		choices, err := p.dir.GetChoiceValues(ctx, p.cfg.ReferenceSitePath, p.cfg.ReferenceList, p.cfg.ReferenceColumn)
		if err != nil {
			slog.Warn("reference choice values unavailable", "customer", c.ExternalID, "error", err)
		} else {
			c.ColumnProduktionsdokument = p.createColumn(ctx, site.ID, list.ID, graph.ColumnDefinition{
				Name:    p.cfg.ReferenceColumn,
				Choices: choices,
			})
		}
	}

	c.GroupID, c.DriveID, c.GeneralFolderID = res.GroupID, res.DriveID, res.GeneralFolderID
	if err := p.customers.SaveProgress(ctx, c); err != nil {
		return Retryable, err
	}
	if !c.ColumnsCreated() {
		return Retryable, nil
	}
	return Accepted, nil
}

// createColumn attempts one column creation. A conflict means a previous
// attempt already created it.
func (p *Provisioner) createColumn(ctx context.Context, siteID, listID string, def graph.ColumnDefinition) bool {
	err := p.dir.CreateColumn(ctx, siteID, listID, def)
	if err != nil && !graph.IsConflict(err) {
		slog.Warn("column creation failed", "column", def.Name, "error", err)
		return false
	}
	return true
}

// AssignPermissions adds the customer's seller and project manager as group
// owners. A customer without assignees is a no-op success.
func (p *Provisioner) AssignPermissions(ctx context.Context, msg model.ProvisioningMessage) (Disposition, error) {
	c, err := p.resolveCustomer(ctx, msg)
	if err != nil {
		return disposition(err), err
	}

	res, err := p.loc.Locate(ctx, c)
	if err != nil {
		return disposition(err), err
	}
	if !res.OK {
		return Retryable, nil
	}

	for _, assignee := range []string{c.Seller, c.ProjectManager} {
		if assignee == "" {
			continue
		}
		u, err := p.dir.GetUserByEmail(ctx, assignee)
		if err != nil {
			return disposition(err), err
		}
		if err := p.dir.AddGroupOwner(ctx, u.ID, res.GroupID); err != nil && !graph.IsConflict(err) {
			return disposition(err), err
		}
	}
	return Accepted, nil
}

// CreateTeam binds a team to the customer's group, creating one when the
// group has none.
func (p *Provisioner) CreateTeam(ctx context.Context, msg model.ProvisioningMessage) (Disposition, error) {
	c, err := p.resolveCustomer(ctx, msg)
	if err != nil {
		return disposition(err), err
	}

	res, err := p.loc.Locate(ctx, c)
	if err != nil {
		return disposition(err), err
	}
	if !res.OK {
		return Retryable, nil
	}

	if _, err := p.dir.FindOrCreateTeam(ctx, res.GroupID); err != nil {
		return disposition(err), err
	}
	return Accepted, nil
}
