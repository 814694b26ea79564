package models

import (
	"github.com/recoverly/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for the Customer aggregate root
type CustomerModel struct {
	TenantAggregateModel
	ClientName     string          `gorm:"type:varchar(200);not null;index"`
	Category       string          `gorm:"type:varchar(100);index"`
	CreditLimit    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		ClientName:          m.ClientName,
		Category:            m.Category,
		CreditLimit:         m.CreditLimit,
		OpeningBalance:      m.OpeningBalance,
	}
}

// FromDomain populates the persistence model from a domain Customer
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.ClientName = c.ClientName
	m.Category = c.Category
	m.CreditLimit = c.CreditLimit
	m.OpeningBalance = c.OpeningBalance
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
