package models

import (
	"fmt"
	"strconv"
	"time"
)

// ClientType is the kind of billed party.
type ClientType string

const (
	ClientTypeUndefined   ClientType = "ND"
	ClientTypeCondominium ClientType = "CD"
	ClientTypePerson      ClientType = "PS"
	ClientTypeCompany     ClientType = "AZ"
)

// ClientTypes lists the accepted codes in display order.
var ClientTypes = []ClientType{ClientTypeUndefined, ClientTypeCondominium, ClientTypePerson, ClientTypeCompany}

// PersonHonorific prefixes the label of person clients.
const PersonHonorific = "Sig./Sig.ra "

// ErrInvalidClientType is returned by ParseClientType for unknown codes.
var ErrInvalidClientType = fmt.Errorf("invalid client type")

// ParseClientType accepts one of the four codes. An empty string maps to
// ClientTypeUndefined.
func ParseClientType(s string) (ClientType, error) {
	if s == "" {
		return ClientTypeUndefined, nil
	}
	ct := ClientType(s)
	if !ct.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidClientType, s)
	}
	return ct, nil
}

// Valid reports whether t is one of the enumerated codes.
func (t ClientType) Valid() bool {
	switch t {
	case ClientTypeUndefined, ClientTypeCondominium, ClientTypePerson, ClientTypeCompany:
		return true
	}
	return false
}

// Client is the billed party of an intervention.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ClientType ClientType `gorm:"size:2;not null;index" json:"client_type" validate:"oneof=ND CD PS AZ"`

	// BuildingCode only matters for condominiums.
	BuildingCode int `gorm:"not null" json:"building_code"`

	DisplayName string `gorm:"size:200;index" json:"display_name" validate:"max=200"`
	LastName    string `gorm:"size:200;index" json:"last_name" validate:"max=200"`
	FirstName   string `gorm:"size:200" json:"first_name" validate:"max=200"`
}

// Label composes the single line display name: a prefix chosen by the client
// kind followed by the optional last and first names.
func (c *Client) Label() string {
	return c.labelPrefix() + nameSuffix(c.LastName, c.FirstName)
}

func (c *Client) labelPrefix() string {
	switch c.ClientType {
	case ClientTypeCondominium:
		return strconv.Itoa(c.BuildingCode) + " - " + c.DisplayName
	case ClientTypePerson:
		return PersonHonorific
	default:
		return ""
	}
}

// nameSuffix pads each present name part with the spacing the labels have
// always carried: " last " and " first".
func nameSuffix(last, first string) string {
	s := ""
	if last != "" {
		s += " " + last + " "
	}
	if first != "" {
		s += " " + first
	}
	return s
}
