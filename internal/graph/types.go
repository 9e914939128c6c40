package graph

import "time"

// Group is an Azure AD group backing a customer workspace.
type Group struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Mail        string `json:"mail,omitempty"`
}

// Drive is the document-storage root associated with a group.
type Drive struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	WebURL string `json:"webUrl,omitempty"`
}

// Item is a drive item (folder or file).
type Item struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	WebURL       string    `json:"webUrl,omitempty"`
	LastModified time.Time `json:"lastModifiedDateTime,omitempty"`
	Folder       *struct {
		ChildCount int `json:"childCount"`
	} `json:"folder,omitempty"`
}

// IsFolder reports whether the item carries the folder facet.
func (i Item) IsFolder() bool { return i.Folder != nil }

// Site is a SharePoint site.
type Site struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
	WebURL      string `json:"webUrl,omitempty"`
}

// List is a SharePoint list, typically the group's document library.
type List struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
}

// User is a directory user.
type User struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName,omitempty"`
	UserPrincipalName string `json:"userPrincipalName,omitempty"`
	Mail              string `json:"mail,omitempty"`
}

// ColumnDefinition describes a custom column on a document library. Exactly
// one of Text and Choice is set.
type ColumnDefinition struct {
	Name         string   `json:"name"`
	DisplayName  string   `json:"displayName,omitempty"`
	DefaultValue string   `json:"-"`
	Text         bool     `json:"-"`
	Choices      []string `json:"-"`
}
