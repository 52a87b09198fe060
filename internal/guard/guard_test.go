package guard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	owner := Principal{ID: 7, Role: "LANDLORD", Authenticated: true}
	other := Principal{ID: 8, Role: "LANDLORD", Authenticated: true}
	tenant := Principal{ID: 9, Role: "TENANT", Authenticated: true}
	manager := Principal{ID: 3, Role: "MANAGER", Authenticated: true}
	super := Principal{ID: 1, Role: "TENANT", IsSuperuser: true, Authenticated: true}
	anon := Principal{}

	cases := []struct {
		name   string
		p      Principal
		action Action
		res    Resource
		allow  bool
		reason string
	}{
		{"anyone reads public", anon, ActionRead, Resource{Public: true}, true, ""},
		{"anon cannot read private", anon, ActionRead, Resource{OwnerUserID: 7}, false, ReasonUnauthenticated},
		{"owner reads own", owner, ActionRead, Resource{OwnerUserID: 7}, true, ""},
		{"other cannot read private", other, ActionRead, Resource{OwnerUserID: 7}, false, ReasonNotOwner},

		{"anon submits public form", anon, ActionCreate, Resource{Public: true}, true, ""},
		{"anon cannot create owned", anon, ActionCreate, Resource{OwnerUserID: 7}, false, ReasonUnauthenticated},
		{"duplicate profile blocked", owner, ActionCreate, Resource{OwnerUserID: 7, Exists: true}, false, ReasonAlreadyExists},
		{"owner creates own", owner, ActionCreate, Resource{OwnerUserID: 7}, true, ""},

		{"owner updates own", owner, ActionUpdate, Resource{OwnerUserID: 7}, true, ""},
		{"other cannot update", other, ActionUpdate, Resource{OwnerUserID: 7}, false, ReasonNotOwner},
		{"unowned cannot be updated", owner, ActionUpdate, Resource{}, false, ReasonNotOwner},
		{"other cannot delete", other, ActionDelete, Resource{OwnerUserID: 7}, false, ReasonNotOwner},

		{"manager moderates", manager, ActionModerate, Resource{}, true, ""},
		{"tenant cannot moderate", tenant, ActionModerate, Resource{}, false, ReasonForbidden},
		{"landlord cannot moderate", owner, ActionModerate, Resource{}, false, ReasonForbidden},
		{"anon cannot moderate", anon, ActionModerate, Resource{}, false, ReasonUnauthenticated},

		{"superuser bypasses ownership", super, ActionDelete, Resource{OwnerUserID: 7}, true, ""},
		{"superuser bypasses moderation", super, ActionModerate, Resource{}, true, ""},
		{"superuser bypasses exists", super, ActionCreate, Resource{OwnerUserID: 7, Exists: true}, true, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Authorize(tc.p, tc.action, tc.res)
			require.Equal(t, tc.allow, d.Allowed)
			if !tc.allow {
				require.Equal(t, tc.reason, d.Reason)
			}
		})
	}
}
