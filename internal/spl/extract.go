package spl

import (
	"regexp"
	"strings"

	"github.com/beevik/etree"

	"ndclink/internal/domain"
)

const (
	// dunsRoot is the OID tagging DUNS organization identifiers.
	dunsRoot = "1.3.6.1.4.1.519.1"
	// ndcCodeSystem is the OID tagging NDC product codes.
	ndcCodeSystem = "2.16.840.1.113883.6.69"
)

const (
	dunsIDPath    = "//id[@root='" + dunsRoot + "']"
	dunsIDRelPath = ".//id[@root='" + dunsRoot + "']"
	ndcCodeFilter = "code[@codeSystem='" + ndcCodeSystem + "']"
)

// ndcPattern matches the 4-4-2 / 5-3-2 / 5-4-1 style NDC package codes
// that appear in free-form label text.
var ndcPattern = regexp.MustCompile(`\b\d{4,5}-\d{3,4}-\d{1,2}\b`)

// CodeSource identifies which extraction strategy discovered a product code.
type CodeSource string

const (
	CodeSourceActivity   CodeSource = "activity"
	CodeSourceEquivalent CodeSource = "equivalent"
	CodeSourceBody       CodeSource = "body"
)

// Organization is a DUNS candidate found in a document, with the role
// derived from the business activities declared around its identifier.
type Organization struct {
	DUNS string
	Name string
	Role domain.OrgRole
}

// CodeHit is a single product code occurrence. RelatedDUNS is the
// organization the surrounding markup ties the code to, when one exists.
type CodeHit struct {
	NDC         string
	Source      CodeSource
	RelatedDUNS string
}

// Result holds everything extracted from one document.
type Result struct {
	Source        string
	Organizations []Organization
	Codes         []CodeHit
	AuthorDUNS    string
}

// EligibleManufacturers returns the organizations allowed to populate the
// mapping. When no organization declares a manufacturing activity, the
// document author is promoted, but only if the author was not actively
// classified into an excluded role (repacker, labeler, API manufacturer).
func (r Result) EligibleManufacturers() []Organization {
	var eligible []Organization
	for _, org := range r.Organizations {
		if org.Role.Eligible() {
			eligible = append(eligible, org)
		}
	}
	if len(eligible) > 0 || r.AuthorDUNS == "" {
		return eligible
	}

	for _, org := range r.Organizations {
		if org.DUNS == r.AuthorDUNS && org.Role == domain.RoleUnknown {
			promoted := org
			promoted.Role = domain.RoleManufacturer
			return []Organization{promoted}
		}
	}
	return nil
}

// HasManufacturer reports whether the document contributes to the mapping.
func (r Result) HasManufacturer() bool {
	return len(r.EligibleManufacturers()) > 0
}

// ExcludedOrganizations returns the DUNS candidates filtered out by the
// role check. They are surfaced for run statistics only.
func (r Result) ExcludedOrganizations() []Organization {
	eligible := map[string]bool{}
	for _, org := range r.EligibleManufacturers() {
		eligible[org.DUNS] = true
	}

	var excluded []Organization
	for _, org := range r.Organizations {
		if !eligible[org.DUNS] {
			excluded = append(excluded, org)
		}
	}
	return excluded
}

// Mappings returns the NDC → DUNS pairs this document contributes: the
// cross-product of eligible manufacturers and discovered codes. Codes tied
// to an ineligible organization are dropped; codes with no tie bind to the
// first eligible manufacturer.
func (r Result) Mappings() map[string]string {
	eligible := r.EligibleManufacturers()
	if len(eligible) == 0 {
		return nil
	}

	byDUNS := map[string]bool{}
	for _, org := range eligible {
		byDUNS[org.DUNS] = true
	}

	mappings := make(map[string]string)
	for _, hit := range r.Codes {
		switch {
		case hit.RelatedDUNS != "" && byDUNS[hit.RelatedDUNS]:
			mappings[hit.NDC] = hit.RelatedDUNS
		case hit.RelatedDUNS == "":
			mappings[hit.NDC] = eligible[0].DUNS
		}
	}
	return mappings
}

// Extract recovers manufacturer identifiers and product codes from one
// parsed document, tolerating the known structural variants publishers use.
func Extract(doc *Document) Result {
	return Result{
		Source:        doc.source,
		Organizations: findOrganizations(doc.root),
		Codes:         findProductCodes(doc.root),
		AuthorDUNS:    authorDUNS(doc.root),
	}
}

// findOrganizations applies the ordered DUNS strategies. Earlier strategies
// win for a given DUNS; later ones only add identifiers the earlier ones
// missed.
func findOrganizations(root *etree.Element) []Organization {
	var orgs []Organization
	seen := map[string]bool{}

	appendOrg := func(duns string, scope *etree.Element) {
		if duns == "" || seen[duns] {
			return
		}
		seen[duns] = true
		org := Organization{DUNS: duns, Role: domain.RoleUnknown}
		if scope != nil {
			org.Name = childText(scope, "name")
			org.Role = roleOf(scope)
		}
		orgs = append(orgs, org)
	}

	// Variant 1: the standard authorship encoding.
	for _, org := range root.FindElements("//author/assignedEntity/representedOrganization") {
		appendOrg(firstDUNS(org), org)
	}

	// Variant 2: assignedOrganization, used by a minority of publishers.
	for _, org := range root.FindElements("//assignedOrganization") {
		appendOrg(firstDUNS(org), org)
	}

	// Variant 3: any DUNS-rooted id, wherever it sits in the tree.
	for _, id := range root.FindElements(dunsIDPath) {
		appendOrg(id.SelectAttrValue("extension", ""), nearestNamedAncestor(id))
	}

	return orgs
}

// roleOf classifies an organization by the activities declared beneath it.
// A single manufacturing activity makes it a manufacturer regardless of
// what else it also does.
func roleOf(scope *etree.Element) domain.OrgRole {
	role := domain.RoleUnknown
	for _, code := range scope.FindElements(".//performance/actDefinition/code") {
		switch r := classifyActivity(code.SelectAttrValue("displayName", "")); {
		case r == domain.RoleManufacturer:
			return domain.RoleManufacturer
		case role == domain.RoleUnknown:
			role = r
		}
	}
	return role
}

// classifyActivity maps an actDefinition display name onto an OrgRole.
// Only unqualified manufacturing counts; repacking, relabeling, API
// synthesis, analysis and compounding are distinct roles or noise.
func classifyActivity(displayName string) domain.OrgRole {
	name := strings.ToUpper(strings.TrimSpace(displayName))
	switch {
	case name == "":
		return domain.RoleUnknown
	case strings.Contains(name, "API"):
		return domain.RoleAPIManufacturer
	case strings.Contains(name, "REPACK"):
		return domain.RoleRepacker
	case strings.Contains(name, "RELABEL"):
		return domain.RoleLabeler
	case strings.Contains(name, "MANUFACTURE"):
		for _, term := range []string{"PACK", "LABEL", "ANALYSIS", "COMPOUND"} {
			if strings.Contains(name, term) {
				return domain.RoleUnknown
			}
		}
		return domain.RoleManufacturer
	case strings.Contains(name, "LABEL"):
		return domain.RoleLabeler
	case strings.Contains(name, "PACK"):
		return domain.RoleRepacker
	default:
		return domain.RoleUnknown
	}
}

// findProductCodes applies all NDC strategies; unlike the DUNS strategies
// they are cumulative, since different codes surface via different paths
// in the same document.
func findProductCodes(root *etree.Element) []CodeHit {
	var hits []CodeHit
	author := authorDUNS(root)

	// Strategy 1: direct manufacturing declarations.
	for _, act := range root.FindElements("//performance/actDefinition") {
		code := act.FindElement("./code")
		if code == nil || classifyActivity(code.SelectAttrValue("displayName", "")) != domain.RoleManufacturer {
			continue
		}

		related := ""
		if org := ancestorElement(act, "assignedOrganization"); org != nil {
			related = firstDUNS(org)
		}

		for _, c := range act.FindElements("./product/manufacturedProduct/manufacturedMaterialKind/" + ndcCodeFilter) {
			if ndc := c.SelectAttrValue("code", ""); ndc != "" {
				hits = append(hits, CodeHit{NDC: ndc, Source: CodeSourceActivity, RelatedDUNS: related})
			}
		}
	}

	// Strategy 2: equivalence cross-references. Empirically the majority
	// source for generic products the first strategy misses.
	for _, equiv := range root.FindElements("//asEquivalentEntity[@classCode='EQUIV']") {
		for _, c := range equiv.FindElements(".//" + ndcCodeFilter) {
			if ndc := c.SelectAttrValue("code", ""); ndc != "" {
				hits = append(hits, CodeHit{NDC: ndc, Source: CodeSourceEquivalent, RelatedDUNS: author})
			}
		}
	}

	// Strategy 3: structured body sections, as a lower-confidence
	// supplement. Matching NDC-shaped tokens outside the structured body
	// was tried and rejected: the false-positive rate is unacceptable.
	seenBody := map[string]bool{}
	appendBodyHit := func(ndc string) {
		if ndc == "" || seenBody[ndc] {
			return
		}
		seenBody[ndc] = true
		hits = append(hits, CodeHit{NDC: ndc, Source: CodeSourceBody, RelatedDUNS: author})
	}

	for _, body := range root.FindElements("//component/structuredBody") {
		for _, product := range body.FindElements(".//manufacturedProduct") {
			for _, path := range []string{
				"./manufacturedMedicine/" + ndcCodeFilter,
				"./manufacturedProduct/" + ndcCodeFilter,
			} {
				for _, c := range product.FindElements(path) {
					appendBodyHit(c.SelectAttrValue("code", ""))
				}
			}
		}

		for _, txt := range body.FindElements(".//text") {
			for _, ndc := range ndcPattern.FindAllString(collectText(txt), -1) {
				appendBodyHit(ndc)
			}
		}
	}

	return hits
}

// authorDUNS returns the DUNS of the document author, when present.
func authorDUNS(root *etree.Element) string {
	for _, org := range root.FindElements("//author/assignedEntity/representedOrganization") {
		if duns := firstDUNS(org); duns != "" {
			return duns
		}
	}
	return ""
}

// firstDUNS returns the first DUNS-rooted identifier beneath el.
func firstDUNS(el *etree.Element) string {
	for _, id := range el.FindElements(dunsIDRelPath) {
		if ext := id.SelectAttrValue("extension", ""); ext != "" {
			return ext
		}
	}
	return ""
}

// ancestorElement walks up from el to the nearest ancestor with the given tag.
func ancestorElement(el *etree.Element, tag string) *etree.Element {
	for p := el.Parent(); p != nil; p = p.Parent() {
		if p.Tag == tag {
			return p
		}
	}
	return nil
}

// nearestNamedAncestor returns the closest ancestor carrying a <name>
// child, which is the organization element a bare identifier belongs to.
func nearestNamedAncestor(el *etree.Element) *etree.Element {
	for p := el.Parent(); p != nil; p = p.Parent() {
		if p.FindElement("./name") != nil {
			return p
		}
	}
	return nil
}

// childText returns the flattened text of the first child with the given tag.
func childText(el *etree.Element, tag string) string {
	child := el.FindElement("./" + tag)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(collectText(child))
}

// collectText flattens all character data beneath el, in document order.
func collectText(el *etree.Element) string {
	var sb strings.Builder
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			sb.WriteString(t.Data)
		case *etree.Element:
			sb.WriteString(collectText(t))
		}
	}
	return sb.String()
}
