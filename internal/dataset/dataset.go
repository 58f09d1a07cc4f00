// Package dataset provides read-only access to the labeled ground-truth
// leads every prompt candidate is evaluated against.
package dataset

import (
	"context"
	"fmt"
	"sort"

	"github.com/jonathan/leadscout/internal/types"
)

// Reader is the storage dependency for loading the labeled dataset.
// *db.DB satisfies it.
type Reader interface {
	ListGroundTruthLeads(ctx context.Context) ([]types.GroundTruthLead, error)
}

// Group is the set of labeled leads for one company. Scoring never compares
// leads across groups.
type Group struct {
	Company string
	Leads   []types.GroundTruthLead
}

// Dataset is an immutable snapshot of the labeled leads.
type Dataset struct {
	leads  []types.GroundTruthLead
	groups []Group
	ranks  map[string]int
}

// Load fetches and validates the labeled dataset.
func Load(ctx context.Context, reader Reader) (*Dataset, error) {
	leads, err := reader.ListGroundTruthLeads(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ground truth: %w", err)
	}
	return New(leads)
}

// New builds a dataset from already-loaded leads, validating ids and ranks.
func New(leads []types.GroundTruthLead) (*Dataset, error) {
	if len(leads) == 0 {
		return nil, fmt.Errorf("ground truth dataset is empty")
	}

	ranks := make(map[string]int, len(leads))
	byCompany := make(map[string][]types.GroundTruthLead)
	for _, lead := range leads {
		if lead.ID == "" {
			return nil, fmt.Errorf("ground truth lead with empty id (company %q)", lead.Company)
		}
		if _, dup := ranks[lead.ID]; dup {
			return nil, fmt.Errorf("duplicate ground truth lead id %q", lead.ID)
		}
		if lead.GroundTruthRank <= 0 {
			return nil, fmt.Errorf("lead %s has non-positive ground truth rank %d", lead.ID, lead.GroundTruthRank)
		}
		ranks[lead.ID] = lead.GroundTruthRank
		byCompany[lead.Company] = append(byCompany[lead.Company], lead)
	}

	companies := make([]string, 0, len(byCompany))
	for company := range byCompany {
		companies = append(companies, company)
	}
	sort.Strings(companies)

	groups := make([]Group, 0, len(companies))
	for _, company := range companies {
		groups = append(groups, Group{Company: company, Leads: byCompany[company]})
	}

	return &Dataset{leads: leads, groups: groups, ranks: ranks}, nil
}

// Groups returns the leads grouped by company, in stable company order.
func (d *Dataset) Groups() []Group {
	return d.groups
}

// Leads returns every labeled lead.
func (d *Dataset) Leads() []types.GroundTruthLead {
	return d.leads
}

// Rank returns the ground-truth rank for a lead id.
func (d *Dataset) Rank(leadID string) (int, bool) {
	rank, ok := d.ranks[leadID]
	return rank, ok
}

// Size returns the number of labeled leads.
func (d *Dataset) Size() int {
	return len(d.leads)
}
