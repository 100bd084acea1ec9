// Package breadcrumb plans which interior crumbs collapse behind an
// ellipsis when a breadcrumb trail does not fit its container
// (spec.md §4.10, C10). The planner is pure: it takes measured widths and
// returns index ranges, leaving rendering to the caller.
package breadcrumb

// Range is an inclusive interior collapse range [Start, End] into the
// measurements slice. The first (index 0) and last crumb are never inside a
// range except for the single-range truncation special case.
type Range struct {
	Start int
	End   int
}

// DisplayPlan is the result of PlanBreadcrumbVisibility.
type DisplayPlan struct {
	CollapsedRanges []Range
	FitsWithinWidth bool
}

// PlanBreadcrumbVisibility decides which interior crumbs to collapse so the
// trail fits containerWidth, given each crumb's measured width and the
// measured width of the ellipsis glyph shown in place of a collapsed range.
func PlanBreadcrumbVisibility(measurements []int, containerWidth, ellipsisWidth int) DisplayPlan {
	n := len(measurements)
	if n == 0 {
		return DisplayPlan{FitsWithinWidth: true}
	}

	total := 0
	for _, w := range measurements {
		total += w
	}
	if total <= containerWidth {
		return DisplayPlan{FitsWithinWidth: true}
	}

	if n == 1 {
		// A single crumb wider than the container cannot be collapsed away;
		// the UI ellipsizes its own label.
		return DisplayPlan{FitsWithinWidth: false}
	}

	lastIndex := n - 1

	// Exhaustive search over every contiguous interior range for the minimal
	// [start, end] (1 <= start <= end <= lastIndex-1) such that collapsing
	// it lets the rest fit: widths[0] + ellipsis + tail + widths[last].
	// "Minimal" ranges by width first, then prefer the earlier start
	// (spec.md §4.10 determinism rule).
	bestFound := false
	var best Range
	var bestWidth int

	for start := 1; start <= lastIndex-1; start++ {
		for end := start; end <= lastIndex-1; end++ {
			collapsedWidth := 0
			for i := start; i <= end; i++ {
				collapsedWidth += measurements[i]
			}
			remaining := total - collapsedWidth + ellipsisWidth
			if remaining > containerWidth {
				continue
			}
			rangeWidth := end - start + 1
			if !bestFound || rangeWidth < bestWidth || (rangeWidth == bestWidth && start < best.Start) {
				best = Range{Start: start, End: end}
				bestWidth = rangeWidth
				bestFound = true
			}
		}
	}

	if bestFound {
		return DisplayPlan{CollapsedRanges: []Range{best}, FitsWithinWidth: false}
	}

	// No interior range alone makes it fit: collapse every crumb before the
	// current (last) one, the first included, and let the UI truncate the
	// current crumb's own label.
	return DisplayPlan{CollapsedRanges: []Range{{Start: 0, End: lastIndex - 1}}, FitsWithinWidth: false}
}
