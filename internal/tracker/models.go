package tracker

import (
	"encoding/json"
	"fmt"
)

// Fields is a raw issue field map keyed by field ID.
type Fields map[string]any

// User is a tracker account. Cloud instances identify users by AccountID,
// server instances by Name.
type User struct {
	AccountID    string `json:"accountId,omitempty"`
	Name         string `json:"name,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
}

// Label returns the most readable identifier for the user.
func (u *User) Label() string {
	if u == nil {
		return ""
	}
	switch {
	case u.DisplayName != "":
		return u.DisplayName
	case u.Name != "":
		return u.Name
	default:
		return u.AccountID
	}
}

// Issue is the subset of issue fields the CLI displays. Raw keeps the
// complete payload as returned by the tracker.
type Issue struct {
	ID             string
	Key            string
	Self           string
	Summary        string
	Description    string
	Status         string
	IssueType      string
	Priority       string
	Assignee       *User
	Reporter       *User
	Labels         []string
	Parent         string
	Created        string
	Updated        string
	ResolutionDate string
	Raw            json.RawMessage
}

type named struct {
	Name string `json:"name"`
}

type keyRef struct {
	Key string `json:"key"`
}

type issueWire struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	Self   string `json:"self"`
	Fields struct {
		Summary        string   `json:"summary"`
		Description    any      `json:"description"`
		Status         *named   `json:"status"`
		IssueType      *named   `json:"issuetype"`
		Priority       *named   `json:"priority"`
		Assignee       *User    `json:"assignee"`
		Reporter       *User    `json:"reporter"`
		Labels         []string `json:"labels"`
		Parent         *keyRef  `json:"parent"`
		Created        string   `json:"created"`
		Updated        string   `json:"updated"`
		ResolutionDate string   `json:"resolutiondate"`
	} `json:"fields"`
}

// UnmarshalJSON flattens the tracker's nested issue representation.
func (i *Issue) UnmarshalJSON(data []byte) error {
	var wire issueWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*i = Issue{
		ID:             wire.ID,
		Key:            wire.Key,
		Self:           wire.Self,
		Summary:        wire.Fields.Summary,
		Status:         nameOf(wire.Fields.Status),
		IssueType:      nameOf(wire.Fields.IssueType),
		Priority:       nameOf(wire.Fields.Priority),
		Assignee:       wire.Fields.Assignee,
		Reporter:       wire.Fields.Reporter,
		Labels:         wire.Fields.Labels,
		Created:        wire.Fields.Created,
		Updated:        wire.Fields.Updated,
		ResolutionDate: wire.Fields.ResolutionDate,
		Raw:            append(json.RawMessage(nil), data...),
	}
	if wire.Fields.Parent != nil {
		i.Parent = wire.Fields.Parent.Key
	}
	switch d := wire.Fields.Description.(type) {
	case string:
		i.Description = d
	case nil:
	default:
		// Rich-text documents are kept in Raw only.
		i.Description = fmt.Sprintf("[%T document]", d)
	}
	return nil
}

func nameOf(n *named) string {
	if n == nil {
		return ""
	}
	return n.Name
}

// IssueType describes one issue type of a project.
type IssueType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Subtask     bool   `json:"subtask"`
}

// Project is a tracker project.
type Project struct {
	ID             string      `json:"id"`
	Key            string      `json:"key"`
	Name           string      `json:"name"`
	Description    string      `json:"description,omitempty"`
	ProjectTypeKey string      `json:"projectTypeKey,omitempty"`
	Lead           *User       `json:"lead,omitempty"`
	IssueTypes     []IssueType `json:"issueTypes,omitempty"`
}

// HasIssueType reports whether the project offers the named type, ignoring case.
func (p *Project) HasIssueType(name string) bool {
	for _, t := range p.IssueTypes {
		if equalFold(t.Name, name) {
			return true
		}
	}
	return false
}

// Transition is a workflow move available on an issue.
type Transition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	To   Status `json:"to"`
}

// Status is a workflow state.
type Status struct {
	Name string `json:"name"`
}

// Comment is an issue comment.
type Comment struct {
	ID      string `json:"id"`
	Body    string `json:"body"`
	Author  *User  `json:"author,omitempty"`
	Created string `json:"created,omitempty"`
}

// CreateMeta lists the fields the tracker expects when creating issues of a
// given type in a project.
type CreateMeta struct {
	Project    string
	IssueTypes []IssueTypeMeta
}

// IssueTypeMeta holds field metadata for one issue type.
type IssueTypeMeta struct {
	ID     string               `json:"id"`
	Name   string               `json:"name"`
	Fields map[string]FieldMeta `json:"fields"`
}

// FieldMeta describes one creatable field.
type FieldMeta struct {
	ID              string         `json:"key"`
	Name            string         `json:"name"`
	Required        bool           `json:"required"`
	HasDefaultValue bool           `json:"hasDefaultValue"`
	Schema          FieldSchema    `json:"schema"`
	AllowedValues   []AllowedValue `json:"allowedValues,omitempty"`
}

// FieldSchema is the tracker's type description of a field.
type FieldSchema struct {
	Type   string `json:"type"`
	Items  string `json:"items,omitempty"`
	System string `json:"system,omitempty"`
	Custom string `json:"custom,omitempty"`
}

// AllowedValue is one option of a constrained field.
type AllowedValue struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
}

// Label returns the display text of the option.
func (v AllowedValue) Label() string {
	if v.Value != "" {
		return v.Value
	}
	if v.Name != "" {
		return v.Name
	}
	return v.ID
}

// IssueType returns the metadata for the named type, ignoring case.
func (m *CreateMeta) IssueType(name string) (*IssueTypeMeta, bool) {
	for i := range m.IssueTypes {
		if equalFold(m.IssueTypes[i].Name, name) {
			return &m.IssueTypes[i], true
		}
	}
	return nil, false
}
