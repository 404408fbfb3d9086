package model

import (
	"path"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UploadsRoute is the public path prefix stored pictures are served under.
const UploadsRoute = "/uploads"

// DateLayout is the wire format of date_of_joining.
const DateLayout = "2006-01-02"

type Employee struct {
	ID             string          `gorm:"primaryKey;type:varchar(36)"`
	FirstName      string          `gorm:"size:50;not null"`
	LastName       string          `gorm:"size:50;not null"`
	Email          string          `gorm:"size:254;not null;uniqueIndex"`
	Position       string          `gorm:"size:100;not null;index"`
	Department     string          `gorm:"size:100;not null;index"`
	Salary         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DateOfJoining  time.Time       `gorm:"not null"`
	ProfilePicture string          `gorm:"size:512"`
	CreatedAt      time.Time       `gorm:"index"`
	UpdatedAt      time.Time
}

// EmployeePatch holds the fields of a partial update; nil means unchanged.
type EmployeePatch struct {
	FirstName      *string
	LastName       *string
	Email          *string
	Position       *string
	Department     *string
	Salary         *decimal.Decimal
	DateOfJoining  *time.Time
	ProfilePicture *string
}

func (p EmployeePatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.Position == nil &&
		p.Department == nil && p.Salary == nil && p.DateOfJoining == nil && p.ProfilePicture == nil
}

// Columns returns the changed columns keyed by their storage name.
func (p EmployeePatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.FirstName != nil {
		cols["first_name"] = *p.FirstName
	}
	if p.LastName != nil {
		cols["last_name"] = *p.LastName
	}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.Position != nil {
		cols["position"] = *p.Position
	}
	if p.Department != nil {
		cols["department"] = *p.Department
	}
	if p.Salary != nil {
		cols["salary"] = *p.Salary
	}
	if p.DateOfJoining != nil {
		cols["date_of_joining"] = *p.DateOfJoining
	}
	if p.ProfilePicture != nil {
		cols["profile_picture"] = *p.ProfilePicture
	}
	return cols
}

type EmployeeFilter struct {
	Department string
	Position   string
}

func (f EmployeeFilter) IsEmpty() bool {
	return strings.TrimSpace(f.Department) == "" && strings.TrimSpace(f.Position) == ""
}

// ProfilePictureURL derives the public URL of a stored picture reference.
// The stored reference itself never leaves the server.
func ProfilePictureURL(ref string) *string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}

	url := UploadsRoute + "/" + path.Base(strings.ReplaceAll(ref, `\`, "/"))
	return &url
}
