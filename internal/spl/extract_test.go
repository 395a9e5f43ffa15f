package spl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ndclink/internal/domain"
)

// manufacturerDoc declares an unqualified manufacturing activity and two
// product codes beneath it.
const manufacturerDoc = `<document xmlns="urn:hl7-org:v3">
  <author>
    <assignedEntity>
      <representedOrganization>
        <id root="1.3.6.1.4.1.519.1" extension="111111111"/>
        <name>Acme Pharmaceuticals</name>
        <assignedEntity>
          <performance>
            <actDefinition>
              <code code="C43360" displayName="MANUFACTURE"/>
              <product>
                <manufacturedProduct>
                  <manufacturedMaterialKind>
                    <code codeSystem="2.16.840.1.113883.6.69" code="0001-0111-11"/>
                  </manufacturedMaterialKind>
                </manufacturedProduct>
              </product>
            </actDefinition>
          </performance>
          <performance>
            <actDefinition>
              <code code="C43360" displayName="MANUFACTURE"/>
              <product>
                <manufacturedProduct>
                  <manufacturedMaterialKind>
                    <code codeSystem="2.16.840.1.113883.6.69" code="0001-0222-22"/>
                  </manufacturedMaterialKind>
                </manufacturedProduct>
              </product>
            </actDefinition>
          </performance>
        </assignedEntity>
      </representedOrganization>
    </assignedEntity>
  </author>
</document>`

// repackerDoc declares only a repacking activity; it must contribute nothing.
const repackerDoc = `<document xmlns="urn:hl7-org:v3">
  <author>
    <assignedEntity>
      <representedOrganization>
        <id root="1.3.6.1.4.1.519.1" extension="222222222"/>
        <name>Repack Co</name>
        <performance>
          <actDefinition>
            <code code="C73607" displayName="REPACK"/>
            <product>
              <manufacturedProduct>
                <manufacturedMaterialKind>
                  <code codeSystem="2.16.840.1.113883.6.69" code="0002-0333-33"/>
                </manufacturedMaterialKind>
              </manufacturedProduct>
            </product>
          </actDefinition>
        </performance>
      </representedOrganization>
    </assignedEntity>
  </author>
</document>`

// fallbackDoc has an author with no declared activities and codes that only
// surface through equivalence cross-references.
const fallbackDoc = `<document xmlns="urn:hl7-org:v3">
  <author>
    <assignedEntity>
      <representedOrganization>
        <id root="1.3.6.1.4.1.519.1" extension="333333333"/>
        <name>Generic Labs</name>
      </representedOrganization>
    </assignedEntity>
  </author>
  <component>
    <structuredBody>
      <component>
        <section>
          <subject>
            <manufacturedProduct>
              <manufacturedProduct>
                <asEquivalentEntity classCode="EQUIV">
                  <code codeSystem="2.16.840.1.113883.6.69" code="0003-0444-44"/>
                </asEquivalentEntity>
                <asEquivalentEntity classCode="SAME">
                  <code codeSystem="2.16.840.1.113883.6.69" code="0003-9999-99"/>
                </asEquivalentEntity>
              </manufacturedProduct>
            </manufacturedProduct>
          </subject>
        </section>
      </component>
    </structuredBody>
  </component>
</document>`

// bodyDoc carries codes only in the structured body: one on a
// manufacturedMedicine element and one inside free-form section text.
const bodyDoc = `<document xmlns="urn:hl7-org:v3">
  <author>
    <assignedEntity>
      <representedOrganization>
        <id root="1.3.6.1.4.1.519.1" extension="444444444"/>
        <name>Body Pharma</name>
      </representedOrganization>
    </assignedEntity>
  </author>
  <component>
    <structuredBody>
      <component>
        <section>
          <subject>
            <manufacturedProduct>
              <manufacturedMedicine>
                <code codeSystem="2.16.840.1.113883.6.69" code="0004-0555-55"/>
              </manufacturedMedicine>
            </manufacturedProduct>
          </subject>
          <text>Each carton (NDC 12345-678-90) contains one vial. Lot 0000-00.</text>
        </section>
      </component>
    </structuredBody>
  </component>
</document>`

func mustExtract(t *testing.T, xml string) Result {
	t.Helper()
	doc, err := ParseDocument("test.xml", []byte(xml))
	require.NoError(t, err)
	return Extract(doc)
}

func TestExtract_Manufacturer(t *testing.T) {
	res := mustExtract(t, manufacturerDoc)

	require.Len(t, res.Organizations, 1)
	assert.Equal(t, "111111111", res.Organizations[0].DUNS)
	assert.Equal(t, "Acme Pharmaceuticals", res.Organizations[0].Name)
	assert.Equal(t, domain.RoleManufacturer, res.Organizations[0].Role)
	assert.Equal(t, "111111111", res.AuthorDUNS)

	require.Len(t, res.Codes, 2)
	for _, hit := range res.Codes {
		assert.Equal(t, CodeSourceActivity, hit.Source)
	}

	assert.True(t, res.HasManufacturer())
	assert.Empty(t, res.ExcludedOrganizations())

	mappings := res.Mappings()
	assert.Equal(t, map[string]string{
		"0001-0111-11": "111111111",
		"0001-0222-22": "111111111",
	}, mappings)
}

func TestExtract_RepackerContributesNothing(t *testing.T) {
	res := mustExtract(t, repackerDoc)

	require.Len(t, res.Organizations, 1)
	assert.Equal(t, domain.RoleRepacker, res.Organizations[0].Role)

	// A repacking activity never yields product codes.
	assert.Empty(t, res.Codes)

	// The author is actively classified as a repacker, so the fallback
	// must not promote it.
	assert.False(t, res.HasManufacturer())
	assert.Empty(t, res.Mappings())

	excluded := res.ExcludedOrganizations()
	require.Len(t, excluded, 1)
	assert.Equal(t, "222222222", excluded[0].DUNS)
}

func TestExtract_AuthorFallback(t *testing.T) {
	res := mustExtract(t, fallbackDoc)

	require.Len(t, res.Organizations, 1)
	assert.Equal(t, domain.RoleUnknown, res.Organizations[0].Role)

	eligible := res.EligibleManufacturers()
	require.Len(t, eligible, 1)
	assert.Equal(t, "333333333", eligible[0].DUNS)
	assert.Equal(t, domain.RoleManufacturer, eligible[0].Role)

	// Only the EQUIV-classed entity contributes.
	require.Len(t, res.Codes, 1)
	assert.Equal(t, CodeSourceEquivalent, res.Codes[0].Source)
	assert.Equal(t, "333333333", res.Codes[0].RelatedDUNS)

	assert.Equal(t, map[string]string{"0003-0444-44": "333333333"}, res.Mappings())
}

func TestExtract_StructuredBody(t *testing.T) {
	res := mustExtract(t, bodyDoc)

	require.Len(t, res.Codes, 2)
	codes := map[string]CodeSource{}
	for _, hit := range res.Codes {
		codes[hit.NDC] = hit.Source
	}
	assert.Equal(t, CodeSourceBody, codes["0004-0555-55"])
	assert.Equal(t, CodeSourceBody, codes["12345-678-90"])

	// "0000-00" in the text is not NDC-shaped and must not match.
	_, ok := codes["0000-00"]
	assert.False(t, ok)

	assert.Equal(t, map[string]string{
		"0004-0555-55": "444444444",
		"12345-678-90": "444444444",
	}, res.Mappings())
}

func TestClassifyActivity(t *testing.T) {
	tests := []struct {
		displayName string
		expected    domain.OrgRole
	}{
		{"MANUFACTURE", domain.RoleManufacturer},
		{"manufacture", domain.RoleManufacturer},
		{"API MANUFACTURE", domain.RoleAPIManufacturer},
		{"REPACK", domain.RoleRepacker},
		{"RELABEL", domain.RoleLabeler},
		{"LABEL", domain.RoleLabeler},
		{"PACK", domain.RoleRepacker},
		{"MANUFACTURE AND PACK", domain.RoleUnknown},
		{"MANUFACTURE, ANALYSIS", domain.RoleUnknown},
		{"ANALYSIS", domain.RoleUnknown},
		{"", domain.RoleUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.displayName, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifyActivity(tt.displayName))
		})
	}
}

func TestRoleOf_ManufacturerWins(t *testing.T) {
	const doc = `<document xmlns="urn:hl7-org:v3">
  <assignedOrganization>
    <id root="1.3.6.1.4.1.519.1" extension="555555555"/>
    <name>Mixed Activities Inc</name>
    <performance>
      <actDefinition><code displayName="REPACK"/></actDefinition>
    </performance>
    <performance>
      <actDefinition><code displayName="MANUFACTURE"/></actDefinition>
    </performance>
  </assignedOrganization>
</document>`

	res := mustExtract(t, doc)
	require.Len(t, res.Organizations, 1)
	assert.Equal(t, domain.RoleManufacturer, res.Organizations[0].Role)
}

func TestFindOrganizations_DedupeAcrossVariants(t *testing.T) {
	// The same DUNS reachable through the author encoding and as a bare
	// identifier must be reported once, with the richer classification.
	const doc = `<document xmlns="urn:hl7-org:v3">
  <author>
    <assignedEntity>
      <representedOrganization>
        <id root="1.3.6.1.4.1.519.1" extension="666666666"/>
        <name>Dup Pharma</name>
      </representedOrganization>
    </assignedEntity>
  </author>
  <legalAuthenticator>
    <assignedEntity>
      <representedOrganization>
        <id root="1.3.6.1.4.1.519.1" extension="666666666"/>
        <name>Dup Pharma</name>
      </representedOrganization>
    </assignedEntity>
  </legalAuthenticator>
</document>`

	res := mustExtract(t, doc)
	assert.Len(t, res.Organizations, 1)
	assert.Equal(t, "666666666", res.Organizations[0].DUNS)
}
