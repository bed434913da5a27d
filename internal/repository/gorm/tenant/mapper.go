package tenantgorm

import (
	"github.com/oggyb/sms-gateway/internal/domain/tenant"
)

func toDomain(m *TenantModel) *tenant.Tenant {
	return &tenant.Tenant{
		ID:        m.ID,
		APIKey:    m.APIKey,
		Balance:   m.Balance,
		CreatedAt: m.CreatedAt,
	}
}

func fromDomain(d *tenant.Tenant) *TenantModel {
	return &TenantModel{
		ID:        d.ID,
		APIKey:    d.APIKey,
		Balance:   d.Balance,
		CreatedAt: d.CreatedAt,
	}
}
