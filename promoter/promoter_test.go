package promoter

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdraley/xsdtools/internal/testutil"
	"github.com/mdraley/xsdtools/resolver"
	"github.com/mdraley/xsdtools/scanner"
	"github.com/mdraley/xsdtools/schema"
	"github.com/mdraley/xsdtools/xsderrors"
)

const commonNS = "urn:common"

// xsd returns a schema document whose default namespace is its target
// namespace, so bare names refer to its own declarations.
func xsd(tns, body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" xmlns="` + tns + `" targetNamespace="` + tns + `" elementFormDefault="qualified">
` + body + `</xs:schema>
`
}

func file(name, content string) string {
	return "-- " + name + " --\n" + content
}

const addressType = `  <xs:complexType name="AddressType">
    <xs:sequence>
      <xs:element name="Street" type="xs:string"/>
    </xs:sequence>
  </xs:complexType>
`

const addressTypeWithZip = `  <xs:complexType name="AddressType">
    <xs:sequence>
      <xs:element name="Street" type="xs:string"/>
    </xs:sequence>
    <xs:attribute name="Zip" type="xs:string" use="optional"/>
  </xs:complexType>
`

func commonPath(dir string) string {
	return filepath.Join(dir, "common", "Common.xsd")
}

func runPromoter(t *testing.T, dir string, mutate func(*Config)) *Result {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Roots = []string{filepath.Join(dir, "schemas")}
	cfg.CommonSchema = commonPath(dir)
	cfg.Namespace = commonNS
	if mutate != nil {
		mutate(&cfg)
	}
	res, err := New(cfg).Run(context.Background())
	require.NoError(t, err)
	return res
}

func loadDoc(t *testing.T, path string) *schema.Document {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := schema.Parse(path, data)
	require.NoError(t, err)
	return doc
}

func globals(doc *schema.Document) []string {
	var out []string
	for _, d := range scanner.Scan(doc, scanner.Options{}).Declarations {
		out = append(out, string(d.Kind)+":"+d.Name)
	}
	return out
}

func imports(doc *schema.Document) []string {
	var out []string
	for _, c := range doc.Root().ChildElements() {
		if !schema.IsXSD(c, "import") && !schema.IsXSD(c, "include") {
			continue
		}
		ns, _ := schema.LocalAttr(c, "namespace")
		loc, _ := schema.LocalAttr(c, "schemaLocation")
		out = append(out, c.Tag+" "+ns+" "+loc)
	}
	return out
}

func attrOf(t *testing.T, doc *schema.Document, elementName, attr string) string {
	t.Helper()
	for _, e := range doc.Root().FindElements("//*") {
		if n, _ := schema.LocalAttr(e, "name"); n == elementName {
			v, _ := schema.LocalAttr(e, attr)
			return v
		}
	}
	t.Fatalf("no element named %q", elementName)
	return ""
}

func readReport(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, csvHeader, rows[0])
	return rows[1:]
}

func identicalTree() string {
	return file("schemas/Service/a.xsd", xsd("urn:a", addressType+`  <xs:element name="Order" type="AddressType"/>
`)) + file("schemas/Service/b.xsd", xsd("urn:b", addressType+`  <xs:element name="Customer" type="AddressType"/>
`))
}

func TestRun_PromotesIdenticalDuplicates(t *testing.T) {
	dir := testutil.WriteTree(t, identicalTree())

	res := runPromoter(t, dir, nil)

	require.Empty(t, res.Failures)
	require.Len(t, res.Promotions, 1)
	assert.Equal(t, "AddressType", res.Promotions[0].Name)
	assert.Equal(t, resolver.ResolutionIdentical, res.Promotions[0].Resolution)
	assert.True(t, res.Promotions[0].Added)
	assert.Len(t, res.Demotions, 2)
	assert.Equal(t, 1, res.Summary.Promoted)
	assert.Equal(t, 2, res.Summary.Demoted)
	assert.Equal(t, 3, res.Summary.FilesWritten)
	assert.Equal(t, 2, res.Summary.Backups)

	common := loadDoc(t, commonPath(dir))
	assert.Equal(t, []string{"complexType:AddressType"}, globals(common))
	assert.Equal(t, commonNS, common.TargetNamespace())
	assert.Equal(t, commonNS, common.Prefixes()["c"])
	assert.Equal(t, "xs:string", attrOf(t, common, "Street", "type"))
	assert.Empty(t, imports(common))

	for _, tc := range []struct{ file, element string }{
		{"schemas/Service/a.xsd", "Order"},
		{"schemas/Service/b.xsd", "Customer"},
	} {
		doc := loadDoc(t, filepath.Join(dir, tc.file))
		assert.Equal(t, []string{"element:" + tc.element}, globals(doc), tc.file)
		assert.Equal(t, "c:AddressType", attrOf(t, doc, tc.element, "type"), tc.file)
		assert.Equal(t, commonNS, doc.Prefixes()["c"], tc.file)
		assert.Equal(t, []string{"import urn:common ../../common/Common.xsd"}, imports(doc), tc.file)

		backup, err := os.ReadFile(filepath.Join(dir, tc.file+".orig"))
		require.NoError(t, err)
		assert.Contains(t, string(backup), `name="AddressType"`)
	}

	assert.Empty(t, readReport(t, res.ReportPath))
	assert.Equal(t, filepath.Join(dir, "common", "Common.conflicts.csv"), res.ReportPath)
	assert.Len(t, res.Warnings.ByCategory(WarnDeclarationPromoted), 1)
	assert.Empty(t, res.Warnings.ByCategory(WarnUnresolvedReference))
}

func TestRun_Idempotent(t *testing.T) {
	dir := testutil.WriteTree(t, identicalTree())
	runPromoter(t, dir, nil)
	first := testutil.ReadTree(t, dir)

	res := runPromoter(t, dir, nil)

	assert.Empty(t, res.Written)
	assert.Empty(t, res.Promotions)
	assert.Empty(t, res.Demotions)
	assert.Empty(t, res.Records)
	assert.Empty(t, res.Failures)
	assert.Equal(t, first, testutil.ReadTree(t, dir))
}

func TestRun_ConflictSkippedByDefault(t *testing.T) {
	dir := testutil.WriteTree(t,
		file("schemas/Service/a.xsd", xsd("urn:a", addressTypeWithZip+`  <xs:element name="Order" type="AddressType"/>
`))+file("schemas/Service/b.xsd", xsd("urn:b", addressType+`  <xs:element name="Customer" type="AddressType"/>
`)))
	before := testutil.ReadTree(t, dir)

	res := runPromoter(t, dir, nil)

	assert.Empty(t, res.Written)
	assert.Empty(t, res.Promotions)
	_, err := os.Stat(commonPath(dir))
	assert.ErrorIs(t, err, os.ErrNotExist)

	after := testutil.ReadTree(t, dir)
	delete(after, "common/Common.conflicts.csv")
	assert.Equal(t, before, after)

	rows := readReport(t, res.ReportPath)
	require.Len(t, rows, 1)
	a := filepath.Join(dir, "schemas", "Service", "a.xsd")
	b := filepath.Join(dir, "schemas", "Service", "b.xsd")
	assert.Equal(t, []string{"AddressType", "complexType", "2", "", a + ";" + b, ReportManualSkip}, rows[0][:6])
	assert.Equal(t, 1, res.Summary.Conflicts)
	require.Len(t, res.Warnings.ByCategory(WarnConflictSkipped), 1)
}

func TestRun_AutoPickPrefersTier(t *testing.T) {
	variant := func(use string) string {
		return `  <xs:complexType name="AddressType">
    <xs:attribute name="Zip" type="xs:string" use="` + use + `"/>
  </xs:complexType>
  <xs:element name="Addr` + use + `" type="AddressType"/>
`
	}
	dir := testutil.WriteTree(t,
		file("schemas/Root/x.xsd", xsd("urn:root", variant("required")))+
			file("schemas/Service/y.xsd", xsd("urn:service", variant("optional"))))

	res := runPromoter(t, dir, func(c *Config) {
		c.AutoPick = true
		c.TierRoots = []string{"Service", "Root"}
	})

	require.Len(t, res.Promotions, 1)
	assert.Equal(t, resolver.ResolutionAutoPick, res.Promotions[0].Resolution)
	service := filepath.Join(dir, "schemas", "Service", "y.xsd")
	root := filepath.Join(dir, "schemas", "Root", "x.xsd")
	assert.Equal(t, service, res.Promotions[0].Source)

	common := loadDoc(t, commonPath(dir))
	assert.Equal(t, "optional", attrOf(t, common, "Zip", "use"))

	rootDoc := loadDoc(t, root)
	assert.Equal(t, []string{"element:Addrrequired"}, globals(rootDoc))
	assert.Equal(t, "c:AddressType", attrOf(t, rootDoc, "Addrrequired", "type"))
	assert.Equal(t, []string{"import urn:common ../../common/Common.xsd"}, imports(rootDoc))

	rows := readReport(t, res.ReportPath)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"AddressType", "complexType", "2", service, root, ReportAutoPick}, rows[0][:6])
	assert.Len(t, res.Warnings.ByCategory(WarnConflictResolved), 1)
}

func TestRun_Override(t *testing.T) {
	dir := testutil.WriteTree(t,
		file("schemas/Service/a.xsd", xsd("urn:a", addressTypeWithZip))+
			file("schemas/Service/b.xsd", xsd("urn:b", addressType)))

	res := runPromoter(t, dir, func(c *Config) {
		c.Overrides = map[string]string{"AddressType": "Service/b.xsd"}
	})

	require.Len(t, res.Promotions, 1)
	assert.Equal(t, resolver.ResolutionOverride, res.Promotions[0].Resolution)
	common := loadDoc(t, commonPath(dir))
	assert.NotContains(t, string(mustBytes(t, common)), "Zip")

	rows := readReport(t, res.ReportPath)
	require.Len(t, rows, 1)
	assert.Equal(t, ReportOverride, rows[0][5])
}

func mustBytes(t *testing.T, doc *schema.Document) []byte {
	t.Helper()
	data, err := doc.Bytes()
	require.NoError(t, err)
	return data
}

func TestRun_UnresolvedReference(t *testing.T) {
	tree := file("schemas/Service/a.xsd", xsd("urn:a", `  <xs:element name="Status" type="StatusCode"/>
`))

	t.Run("warning only", func(t *testing.T) {
		dir := testutil.WriteTree(t, tree)
		before := testutil.ReadTree(t, dir)

		res := runPromoter(t, dir, nil)

		ws := res.Warnings.ByCategory(WarnUnresolvedReference)
		require.Len(t, ws, 1)
		assert.Contains(t, ws[0].Message, `type="StatusCode"`)
		assert.Equal(t, 3, ws[0].Line)
		assert.Empty(t, res.Unresolved)
		assert.Equal(t, 1, res.Summary.Unresolved)
		assert.Empty(t, readReport(t, res.ReportPath))

		after := testutil.ReadTree(t, dir)
		delete(after, "common/Common.conflicts.csv")
		assert.Equal(t, before, after)
	})

	t.Run("strict", func(t *testing.T) {
		dir := testutil.WriteTree(t, tree)

		res := runPromoter(t, dir, func(c *Config) { c.Strict = true })

		require.Len(t, res.Unresolved, 1)
		assert.True(t, res.HasUnresolved())
		assert.Equal(t, "StatusCode", res.Unresolved[0].Value)
		rows := readReport(t, res.ReportPath)
		require.Len(t, rows, 1)
		assert.Equal(t, "StatusCode", rows[0][0])
		assert.Equal(t, ReportUnresolvedReference, rows[0][5])
	})
}

func TestRun_BuiltinsAreNotUnresolved(t *testing.T) {
	dir := testutil.WriteTree(t, file("schemas/a.xsd", `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Name" type="string"/>
  <xs:element name="Count" type="xs:int"/>
  <xs:element name="Bad" type="xs:notAType"/>
</xs:schema>
`))

	res := runPromoter(t, dir, nil)

	ws := res.Warnings.ByCategory(WarnUnresolvedReference)
	require.Len(t, ws, 1)
	assert.Contains(t, ws[0].Message, "xs:notAType")
}

func TestRun_DependencyClosure(t *testing.T) {
	dir := testutil.WriteTree(t, file("schemas/a.xsd", xsd("urn:a", `  <xs:complexType name="AddressType">
    <xs:sequence>
      <xs:element name="Country" type="CountryCode"/>
    </xs:sequence>
  </xs:complexType>
  <xs:simpleType name="CountryCode">
    <xs:restriction base="xs:string"/>
  </xs:simpleType>
  <xs:element name="Home" type="AddressType"/>
`)))

	res := runPromoter(t, dir, func(c *Config) { c.OnlyTypes = []string{"AddressType"} })

	require.Len(t, res.Promotions, 2)
	byName := map[string]Promotion{}
	for _, p := range res.Promotions {
		byName[p.Name] = p
	}
	assert.Equal(t, resolver.ResolutionRequested, byName["AddressType"].Resolution)
	assert.Equal(t, resolver.ResolutionDependency, byName["CountryCode"].Resolution)

	common := loadDoc(t, commonPath(dir))
	assert.ElementsMatch(t, []string{"complexType:AddressType", "simpleType:CountryCode"}, globals(common))
	assert.Equal(t, "c:CountryCode", attrOf(t, common, "Country", "type"))

	doc := loadDoc(t, filepath.Join(dir, "schemas", "a.xsd"))
	assert.Equal(t, []string{"element:Home"}, globals(doc))
	assert.Equal(t, "c:AddressType", attrOf(t, doc, "Home", "type"))
	assert.Empty(t, res.Warnings.ByCategory(WarnUnresolvedReference))
}

func TestRun_BlockedDependency(t *testing.T) {
	address := `  <xs:complexType name="AddressType">
    <xs:sequence>
      <xs:element name="Country" type="CountryCode"/>
    </xs:sequence>
  </xs:complexType>
`
	code := func(length string) string {
		return `  <xs:simpleType name="CountryCode">
    <xs:restriction base="xs:string">
      <xs:length value="` + length + `"/>
    </xs:restriction>
  </xs:simpleType>
`
	}
	dir := testutil.WriteTree(t,
		file("schemas/a.xsd", xsd("urn:a", address+code("2")))+
			file("schemas/b.xsd", xsd("urn:b", address+code("3"))))
	before := testutil.ReadTree(t, dir)

	res := runPromoter(t, dir, nil)

	assert.Empty(t, res.Promotions)
	assert.Empty(t, res.Written)
	resolutions := map[string]string{}
	for _, rec := range res.Records {
		resolutions[rec.Name] = rec.Resolution
	}
	assert.Equal(t, map[string]string{
		"AddressType": ReportBlockedDependency,
		"CountryCode": ReportManualSkip,
	}, resolutions)
	assert.Equal(t, 1, res.Summary.Blocked)

	after := testutil.ReadTree(t, dir)
	delete(after, "common/Common.conflicts.csv")
	assert.Equal(t, before, after)

	t.Run("skip report", func(t *testing.T) {
		dir := testutil.WriteTree(t, identicalTree())
		before := testutil.ReadTree(t, dir)

		res := runPromoter(t, dir, func(c *Config) {
			c.DryRun = true
			c.SkipReport = true
		})

		assert.Empty(t, res.ReportPath)
		assert.Len(t, res.Promotions, 1)
		assert.Equal(t, before, testutil.ReadTree(t, dir))
	})
}

func TestRun_NamingCollision(t *testing.T) {
	dir := testutil.WriteTree(t,
		file("schemas/a.xsd", xsd("urn:a", `  <xs:complexType name="Code">
    <xs:sequence/>
  </xs:complexType>
`))+file("schemas/b.xsd", xsd("urn:b", `  <xs:simpleType name="Code">
    <xs:restriction base="xs:string"/>
  </xs:simpleType>
`)))

	res := runPromoter(t, dir, nil)

	assert.Empty(t, res.Promotions)
	require.Len(t, res.Records, 1)
	assert.Equal(t, ReportNamingCollision, res.Records[0].Resolution)
	assert.Equal(t, "complexType/simpleType", res.Records[0].Kind)
	assert.Len(t, res.Warnings.ByCategory(WarnNamingCollision), 1)
}

func TestRun_CrossKindNameIsReported(t *testing.T) {
	dir := testutil.WriteTree(t,
		file("schemas/a.xsd", xsd("urn:a", addressType))+
			file("schemas/b.xsd", xsd("urn:b", addressType))+
			file("schemas/c.xsd", xsd("urn:c", `  <xs:element name="AddressType" type="xs:string"/>
`)))

	res := runPromoter(t, dir, nil)

	assert.Empty(t, res.Promotions, "a contested name is never promoted")
	assert.Empty(t, res.Demotions)
	assert.Equal(t, 1, res.Summary.Collisions)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "AddressType", res.Records[0].Name)
	assert.Equal(t, ReportNamingCollision, res.Records[0].Resolution)
	assert.Equal(t, "complexType/element", res.Records[0].Kind)
	assert.Len(t, res.Records[0].Others, 3)
	assert.Len(t, res.Warnings.ByCategory(WarnNamingCollision), 1)
	assert.Empty(t, res.Warnings.ByCategory(WarnDeclarationPromoted))

	doc := loadDoc(t, filepath.Join(dir, "schemas", "a.xsd"))
	assert.Equal(t, []string{"complexType:AddressType"}, globals(doc))
}

func TestRun_CommonElementBlocksSameNamedType(t *testing.T) {
	dir := testutil.WriteTree(t, identicalTree()+
		file("common/Common.xsd", xsd(commonNS, `  <xs:element name="AddressType" type="xs:string"/>
`)))

	res := runPromoter(t, dir, nil)

	assert.Empty(t, res.Promotions)
	require.Len(t, res.Records, 1)
	assert.Equal(t, ReportNamingCollision, res.Records[0].Resolution)
	assert.Equal(t, 1, res.Summary.Collisions)
}

func TestRun_FailuresAreIsolated(t *testing.T) {
	dir := testutil.WriteTree(t, identicalTree()+
		file("schemas/broken.xsd", "<xs:schema xmlns:xs=\"http://www.w3.org/2001/XMLSchema\">\n  <xs:element>\n</xs:schema>\n")+
		file("schemas/other.xsd", "<?xml version=\"1.0\"?>\n<root/>\n"))

	res := runPromoter(t, dir, func(c *Config) {
		c.Roots = append(c.Roots, filepath.Join(dir, "missing"))
	})

	require.Len(t, res.Failures, 3)
	var malformed, notSchema, io int
	for _, f := range res.Failures {
		switch {
		case errors.Is(f.Err, xsderrors.ErrMalformedDocument):
			malformed++
		case errors.Is(f.Err, xsderrors.ErrNotASchema):
			notSchema++
		case errors.Is(f.Err, xsderrors.ErrIO):
			io++
		}
	}
	assert.Equal(t, 1, malformed)
	assert.Equal(t, 1, notSchema)
	assert.Equal(t, 1, io)
	assert.Equal(t, 3, res.Summary.FilesFailed)
	assert.Equal(t, 2, res.Summary.FilesScanned)
	assert.Len(t, res.Promotions, 1, "healthy files are still processed")
}

func TestRun_StripsSelfImport(t *testing.T) {
	dir := testutil.WriteTree(t, identicalTree()+
		file("common/Common.xsd", `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" xmlns:c="urn:common" targetNamespace="urn:common" elementFormDefault="qualified" attributeFormDefault="unqualified">
  <xs:import namespace="urn:common" schemaLocation="Common.xsd"/>
  <xs:include schemaLocation="./Common.xsd"/>
  <xs:import namespace="urn:other" schemaLocation="other.xsd"/>
</xs:schema>
`))

	res := runPromoter(t, dir, nil)

	common := loadDoc(t, commonPath(dir))
	assert.Equal(t, []string{"import urn:other other.xsd"}, imports(common))
	assert.Equal(t, []string{"complexType:AddressType"}, globals(common))
	require.Len(t, res.Warnings.ByCategory(WarnSelfReferenceRemoved), 1)
	_, err := os.Stat(commonPath(dir) + ".orig")
	assert.NoError(t, err, "existing common schema is backed up")
}

func TestRun_ExistingCommonDeclaration(t *testing.T) {
	commonDoc := `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" xmlns:c="urn:common" targetNamespace="urn:common" elementFormDefault="qualified" attributeFormDefault="unqualified">
` + addressType + `</xs:schema>
`
	dir := testutil.WriteTree(t,
		file("common/Common.xsd", commonDoc)+
			file("schemas/a.xsd", xsd("urn:a", addressType+`  <xs:element name="Order" type="AddressType"/>
`)))

	res := runPromoter(t, dir, nil)

	require.Len(t, res.Promotions, 1)
	assert.Equal(t, resolver.ResolutionExisting, res.Promotions[0].Resolution)
	assert.False(t, res.Promotions[0].Added)
	assert.Equal(t, 0, res.Summary.Promoted)
	assert.Equal(t, 1, res.Summary.Demoted)
	assert.Equal(t, commonDoc, testutil.ReadFile(t, dir, "common/Common.xsd"))
	assert.Equal(t, []string{filepath.Join(dir, "schemas", "a.xsd")}, res.Written)

	doc := loadDoc(t, filepath.Join(dir, "schemas", "a.xsd"))
	assert.Equal(t, "c:AddressType", attrOf(t, doc, "Order", "type"))
}

func TestRun_DryRun(t *testing.T) {
	dir := testutil.WriteTree(t, identicalTree())
	before := testutil.ReadTree(t, dir)

	res := runPromoter(t, dir, func(c *Config) { c.DryRun = true })

	assert.True(t, res.DryRun)
	assert.Len(t, res.Written, 3)
	assert.Empty(t, res.Backups)
	assert.Len(t, res.Promotions, 1)

	assert.Empty(t, res.ReportPath, "the common directory does not exist yet")
	assert.Equal(t, before, testutil.ReadTree(t, dir))
	assert.NoDirExists(t, filepath.Join(dir, "common"))
}

func TestRun_DryRunReportIntoExistingDir(t *testing.T) {
	dir := testutil.WriteTree(t, identicalTree())
	reports := t.TempDir()

	res := runPromoter(t, dir, func(c *Config) {
		c.DryRun = true
		c.ReportPath = filepath.Join(reports, "plan.csv")
	})

	assert.Equal(t, filepath.Join(reports, "plan.csv"), res.ReportPath)
	assert.FileExists(t, res.ReportPath)
	assert.NoDirExists(t, filepath.Join(dir, "common"))
}

func TestRun_ForeignNamespaceImportFollowsCopy(t *testing.T) {
	withExt := func(tns string) string {
		return `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" xmlns:ext="urn:ext" xmlns="` + tns + `" targetNamespace="` + tns + `">
  <xs:import namespace="urn:ext" schemaLocation="ext/ext.xsd"/>
  <xs:complexType name="PhoneType">
    <xs:sequence>
      <xs:element name="Kind" type="ext:Code"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>
`
	}
	dir := testutil.WriteTree(t,
		file("schemas/Service/a.xsd", withExt("urn:a"))+
			file("schemas/Service/b.xsd", withExt("urn:b"))+
			file("schemas/Service/ext/ext.xsd", `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" targetNamespace="urn:ext">
  <xs:simpleType name="Code">
    <xs:restriction base="xs:string"/>
  </xs:simpleType>
</xs:schema>
`))

	res := runPromoter(t, dir, nil)

	require.Len(t, res.Promotions, 1)
	common := loadDoc(t, commonPath(dir))
	assert.Equal(t, "urn:ext", common.Prefixes()["ext"])
	assert.Equal(t, "ext:Code", attrOf(t, common, "Kind", "type"))
	assert.Equal(t, []string{"import urn:ext ../schemas/Service/ext/ext.xsd"}, imports(common))
	assert.Empty(t, res.Warnings.ByCategory(WarnUnresolvedReference))

	a := loadDoc(t, filepath.Join(dir, "schemas", "Service", "a.xsd"))
	assert.Equal(t, []string{
		"import urn:ext ext/ext.xsd",
		"import urn:common ../../common/Common.xsd",
	}, imports(a))
}

func TestRun_RewritesMemberTypesAndBuiltins(t *testing.T) {
	code := `  <xs:simpleType name="AreaCode">
    <xs:restriction base="xs:string"/>
  </xs:simpleType>
`
	dir := testutil.WriteTree(t,
		file("schemas/a.xsd", xsd("urn:a", code+`  <xs:simpleType name="AnyCode">
    <xs:union memberTypes="AreaCode xs:int"/>
  </xs:simpleType>
  <xs:element name="Label" type="string"/>
`))+file("schemas/b.xsd", xsd("urn:b", code)))

	res := runPromoter(t, dir, nil)

	require.Len(t, res.Promotions, 1)
	doc := loadDoc(t, filepath.Join(dir, "schemas", "a.xsd"))
	union := doc.Root().FindElement("//xs:union")
	require.NotNil(t, union)
	members, _ := schema.LocalAttr(union, "memberTypes")
	assert.Equal(t, "c:AreaCode xs:int", members)
	assert.Equal(t, "xs:string", attrOf(t, doc, "Label", "type"))
}

func TestRun_SeedReport(t *testing.T) {
	dir := testutil.WriteTree(t,
		file("schemas/a.xsd", xsd("urn:a", addressType+`  <xs:simpleType name="Lonely">
    <xs:restriction base="xs:string"/>
  </xs:simpleType>
`))+file("seed.csv", "File,Package\nLonely.java,com.a\nLonely.java,com.b\n"))

	res := runPromoter(t, dir, func(c *Config) { c.SeedReport = filepath.Join(dir, "seed.csv") })

	require.Len(t, res.Promotions, 1)
	assert.Equal(t, "Lonely", res.Promotions[0].Name)
}

func TestRun_ConfigErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		mutate func(*Config)
		option string
	}{
		{"missing common", func(c *Config) { c.CommonSchema = "" }, "common schema"},
		{"missing namespace", func(c *Config) { c.Namespace = "" }, "namespace"},
		{"xsd namespace", func(c *Config) { c.Namespace = schema.XSDNamespace }, "namespace"},
		{"bad prefix", func(c *Config) { c.Prefix = "a:b" }, "prefix"},
		{"reserved prefix", func(c *Config) { c.Prefix = "xmlns" }, "prefix"},
		{"bad format", func(c *Config) { c.ReportFormat = "xml" }, "report format"},
		{"no inputs", func(c *Config) { c.Roots = nil }, "roots"},
		{"bad kind", func(c *Config) { c.Kinds = []schema.Kind{"notation"} }, "kinds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Roots = []string{dir}
			cfg.CommonSchema = commonPath(dir)
			cfg.Namespace = commonNS
			tt.mutate(&cfg)

			_, err := New(cfg).Run(context.Background())
			require.Error(t, err)
			var ce *xsderrors.ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.option, ce.Option)
		})
	}
}

func TestRun_MalformedCommonIsFatal(t *testing.T) {
	dir := testutil.WriteTree(t, identicalTree()+file("common/Common.xsd", "<xs:schema\n"))

	cfg := DefaultConfig()
	cfg.Roots = []string{filepath.Join(dir, "schemas")}
	cfg.CommonSchema = commonPath(dir)
	cfg.Namespace = commonNS
	_, err := New(cfg).Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, xsderrors.ErrMalformedDocument)
	assert.NotContains(t, testutil.ReadFile(t, dir, "schemas/Service/a.xsd"), "c:AddressType")
}

func TestRun_Cancelled(t *testing.T) {
	dir := testutil.WriteTree(t, identicalTree())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := DefaultConfig()
	cfg.Roots = []string{filepath.Join(dir, "schemas")}
	cfg.CommonSchema = commonPath(dir)
	cfg.Namespace = commonNS
	_, err := New(cfg).Run(ctx)

	require.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, testutil.ReadFile(t, dir, "schemas/Service/a.xsd"), "c:AddressType")
}

func TestSummary_String(t *testing.T) {
	s := Summary{FilesScanned: 3, Promoted: 2, Demoted: 4, FilesWritten: 5}
	out := s.String()
	assert.True(t, strings.HasPrefix(out, "3 file(s) scanned"))
	assert.Contains(t, out, "2 promoted")
	assert.Contains(t, out, "5 file(s) written")
}
