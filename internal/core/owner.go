package core

import (
	"bytes"
	"encoding/json"
)

// Owner says who a record belongs to: a specific tenant, or everyone.
// A shared owner marks a global default visible to all tenants. Using a
// tagged type instead of a nullable id keeps the two meanings apart.
type Owner struct {
	id    int64
	owned bool
}

// SharedOwner returns the owner tag for a global default record.
func SharedOwner() Owner { return Owner{} }

// TenantOwner returns the owner tag for a record private to one tenant.
func TenantOwner(id int64) Owner { return Owner{id: id, owned: true} }

// Shared reports whether the record is a global default.
func (o Owner) Shared() bool { return !o.owned }

// TenantID returns the owning tenant id and whether the record is
// tenant-private at all.
func (o Owner) TenantID() (int64, bool) { return o.id, o.owned }

// BelongsTo reports whether the record is private to the given tenant.
func (o Owner) BelongsTo(tenantID int64) bool {
	return o.owned && o.id == tenantID
}

var jsonNull = []byte("null")

// MarshalJSON writes the tenant id, or null for a shared default. This is
// the wire shape the export payload uses.
func (o Owner) MarshalJSON() ([]byte, error) {
	if !o.owned {
		return jsonNull, nil
	}
	return json.Marshal(o.id)
}

func (o *Owner) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		*o = SharedOwner()
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	*o = TenantOwner(id)
	return nil
}
