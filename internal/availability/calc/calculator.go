// Package availability decides whether requested product quantities can be
// produced from current warehouse stock. The calculation is pure: it runs
// over a Snapshot fetched by the caller and touches no shared state, so the
// same code serves both the read-only check endpoint and the locked re-check
// inside the reservation transaction.
package availability

import (
	"fmt"
	"sort"

	"bloomstock/internal/domain"
	"bloomstock/internal/dto"
)

// Snapshot is the state an availability decision is computed against.
// Reserved holds the summed active reservation quantity per component id.
type Snapshot struct {
	Products   map[int]domain.Product
	Lines      map[int][]domain.BOMLine
	Components map[int]domain.Component
	Reserved   map[int]int
}

// ProductIDs returns the distinct product ids of a request, ascending.
func ProductIDs(lines []dto.OrderLine) []int {
	seen := make(map[int]bool, len(lines))
	ids := make([]int, 0, len(lines))
	for _, l := range lines {
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			ids = append(ids, l.ProductID)
		}
	}
	sort.Ints(ids)
	return ids
}

// ComponentIDs returns the distinct component ids referenced by a set of bom
// lines, ascending. The reservation path locks rows in exactly this order.
func ComponentIDs(lines map[int][]domain.BOMLine) []int {
	seen := make(map[int]bool)
	ids := []int{}
	for _, productLines := range lines {
		for _, l := range productLines {
			if !seen[l.ComponentID] {
				seen[l.ComponentID] = true
				ids = append(ids, l.ComponentID)
			}
		}
	}
	sort.Ints(ids)
	return ids
}

// MergeLines sums duplicate product lines into one requested quantity.
// Clients occasionally send the same product twice; the merge is tolerated
// but called out loudly in the report rather than treated as an error.
func MergeLines(lines []dto.OrderLine) ([]dto.OrderLine, []string) {
	quantities := make(map[int]int, len(lines))
	counts := make(map[int]int, len(lines))
	order := []int{}
	for _, l := range lines {
		if counts[l.ProductID] == 0 {
			order = append(order, l.ProductID)
		}
		counts[l.ProductID]++
		quantities[l.ProductID] += l.Quantity
	}

	merged := make([]dto.OrderLine, 0, len(order))
	warnings := []string{}
	for _, pid := range order {
		merged = append(merged, dto.OrderLine{ProductID: pid, Quantity: quantities[pid]})
		if counts[pid] > 1 {
			warnings = append(warnings, fmt.Sprintf(
				"product %d appeared %d times; quantities merged into %d", pid, counts[pid], quantities[pid]))
		}
	}
	return merged, warnings
}

// Compute evaluates one merged request against a snapshot.
//
// Per product: no recipe means unconstrained (always available); otherwise
// every non-optional line must have enough effective availability and the
// minimum producible quantity across non-optional lines must cover the
// request. A missing product or a missing component on a required line fails
// closed.
func Compute(merged []dto.OrderLine, snap Snapshot) dto.AvailabilityReport {
	report := dto.AvailabilityReport{Available: true}

	for _, line := range merged {
		pa := computeProduct(line, snap)
		if !pa.Available {
			report.Available = false
		}
		report.Products = append(report.Products, pa)
	}

	return report
}

func computeProduct(line dto.OrderLine, snap Snapshot) dto.ProductAvailability {
	pa := dto.ProductAvailability{
		ProductID: line.ProductID,
		Requested: line.Quantity,
	}

	if _, ok := snap.Products[line.ProductID]; !ok {
		pa.Warnings = append(pa.Warnings, fmt.Sprintf("product %d not found", line.ProductID))
		return pa
	}

	bomLines := snap.Lines[line.ProductID]
	if len(bomLines) == 0 {
		// No recipe models no component constraint at all.
		pa.Available = true
		pa.Unconstrained = true
		return pa
	}

	sufficient := true
	maxSet := false
	maxQuantity := 0

	for _, bl := range bomLines {
		comp, ok := snap.Components[bl.ComponentID]

		var effective int
		if ok {
			effective = comp.EffectiveAvailable(snap.Reserved[bl.ComponentID])
		}
		// A vanished component behaves as zero stock; optional lines tolerate
		// that, required lines fail closed.

		required := bl.QuantityPerUnit * line.Quantity
		if effective < required && !bl.IsOptional {
			sufficient = false
		}

		if !bl.IsOptional && bl.QuantityPerUnit > 0 {
			producible := effective / bl.QuantityPerUnit
			if !maxSet || producible < maxQuantity {
				maxQuantity = producible
				maxSet = true
			}
		}
	}

	if !maxSet {
		// Lines exist but none of them constrain production (all optional or
		// zero quantity-per-unit).
		pa.Available = sufficient
		pa.Unconstrained = true
		return pa
	}

	pa.MaxQuantity = maxQuantity
	pa.Available = sufficient && maxQuantity >= line.Quantity

	if !pa.Available {
		if maxQuantity == 0 {
			pa.Warnings = append(pa.Warnings, "out of stock")
		} else {
			pa.Warnings = append(pa.Warnings, fmt.Sprintf(
				"requested %d, maximum available %d", line.Quantity, maxQuantity))
		}
	}

	return pa
}

// Plan is one reservation row to be written: Quantity units of a component
// held for the order on behalf of one bill-of-materials line.
type Plan struct {
	ProductID   int
	ComponentID int
	Quantity    int
}

// PlanReservations turns a merged request into concrete reservation rows,
// allocating cumulatively so that products sharing a component within one
// order cannot jointly over-commit it. Optional lines that no longer fit are
// skipped rather than blocking the order. Returns ok=false, and no plans to
// act on, when a required line cannot be covered.
func PlanReservations(merged []dto.OrderLine, snap Snapshot) ([]Plan, bool, []string) {
	remaining := make(map[int]int)
	for id, comp := range snap.Components {
		remaining[id] = comp.EffectiveAvailable(snap.Reserved[id])
	}

	plans := []Plan{}
	warnings := []string{}
	ok := true

	for _, line := range merged {
		for _, bl := range snap.Lines[line.ProductID] {
			required := bl.QuantityPerUnit * line.Quantity
			if required <= 0 {
				continue
			}

			if remaining[bl.ComponentID] < required {
				if bl.IsOptional {
					continue
				}
				ok = false
				warnings = append(warnings, fmt.Sprintf(
					"component %d cannot cover product %d (needs %d, %d left after earlier lines)",
					bl.ComponentID, line.ProductID, required, remaining[bl.ComponentID]))
				continue
			}

			remaining[bl.ComponentID] -= required
			plans = append(plans, Plan{
				ProductID:   line.ProductID,
				ComponentID: bl.ComponentID,
				Quantity:    required,
			})
		}
	}

	if !ok {
		return nil, false, warnings
	}
	return plans, true, warnings
}
