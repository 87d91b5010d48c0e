package server

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/git-galluppakistan/survey-dashboard/app/engine"
	"github.com/git-galluppakistan/survey-dashboard/app/schema"
)

// facetParams maps query parameter names to value facets. Each parameter
// is repeatable and each value may itself be comma separated, so
// ?province=Punjab,Sindh and ?province=Punjab&province=Sindh are the same
// selection.
var facetParams = map[string]schema.Facet{
	"province":  schema.FacetProvince,
	"region":    schema.FacetRegion,
	"district":  schema.FacetDistrict,
	"tehsil":    schema.FacetTehsil,
	"gender":    schema.FacetGender,
	"education": schema.FacetEducation,
}

// parseSelection builds a facet selection from request query parameters.
// Absent parameters impose no constraint.
func parseSelection(c echo.Context) (*engine.Selection, error) {
	sel := engine.NewSelection()
	query := c.QueryParams()

	for param, facet := range facetParams {
		var values []string
		for _, raw := range query[param] {
			for _, v := range strings.Split(raw, ",") {
				if v = strings.TrimSpace(v); v != "" {
					values = append(values, v)
				}
			}
		}
		if len(values) > 0 {
			sel.Select(facet, values...)
		}
	}

	if raw := c.QueryParam("age_min"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("age_min must be an integer: %q", raw)
		}
		sel.AgeMin = &n
	}
	if raw := c.QueryParam("age_max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("age_max must be an integer: %q", raw)
		}
		sel.AgeMax = &n
	}

	return sel, nil
}

// selectionParams renders a selection as canonical cache key parameters.
// Values are sorted so equivalent selections share a key regardless of the
// order the client sent them in.
func selectionParams(sel *engine.Selection) map[string]string {
	params := make(map[string]string)
	for param, facet := range facetParams {
		values := sel.Values[facet]
		if len(values) == 0 {
			continue
		}
		sorted := append([]string(nil), values...)
		sort.Strings(sorted)
		params[param] = strings.Join(sorted, ",")
	}
	if sel.AgeMin != nil {
		params["age_min"] = strconv.Itoa(*sel.AgeMin)
	}
	if sel.AgeMax != nil {
		params["age_max"] = strconv.Itoa(*sel.AgeMax)
	}
	return params
}
