package model

import "time"

const (
	TypeCustomer = "customer"
	TypeSupplier = "supplier"
)

// Customer is the persisted provisioning record. The Graph resource ids are
// append-only caches: once non-empty they are never overwritten. The boolean
// flags are monotonic and transition false->true exactly once.
type Customer struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Type       string `json:"type"` // customer, supplier
	Name       string `json:"name"`

	GroupID         string `json:"group_id,omitempty"`
	DriveID         string `json:"drive_id,omitempty"`
	GeneralFolderID string `json:"general_folder_id,omitempty"`

	GroupCreated         bool `json:"group_created"`
	GeneralFolderCreated bool `json:"general_folder_created"`
	CopiedRootStructure  bool `json:"copied_root_structure"`

	ColumnAdditionalInfo      bool `json:"column_additional_info"`
	ColumnKundnummer          bool `json:"column_kundnummer"`
	ColumnNAVid               bool `json:"column_navid"`
	ColumnProduktionsdokument bool `json:"column_produktionsdokument"`

	Seller         string    `json:"seller,omitempty"`
	ProjectManager string    `json:"project_manager,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ColumnsCreated reports whether every document-library column exists.
func (c *Customer) ColumnsCreated() bool {
	return c.ColumnAdditionalInfo && c.ColumnKundnummer && c.ColumnNAVid && c.ColumnProduktionsdokument
}

// Resolved reports whether the group, drive and General folder ids are all known.
func (c *Customer) Resolved() bool {
	return c.GroupID != "" && c.DriveID != "" && c.GeneralFolderID != ""
}
