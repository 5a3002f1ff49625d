package mcpserver

import (
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/mdraley/xsdtools/internal/testutil"
)

func xsdDoc(tns, body string) string {
	return testutil.XSDHeader(tns) + body + "</xs:schema>\n"
}

const addressType = `  <xs:complexType name="AddressType">
    <xs:sequence>
      <xs:element name="Street" type="xs:string"/>
    </xs:sequence>
  </xs:complexType>
`

func money(base string) string {
	return `  <xs:simpleType name="Money">
    <xs:restriction base="` + base + `"/>
  </xs:simpleType>
`
}

// writeSchemas writes two consumer schemas sharing AddressType and
// disagreeing on Money, and returns the schemas directory.
func writeSchemas(t *testing.T) string {
	t.Helper()
	dir := testutil.WriteTree(t, "-- schemas/Orders/orders.xsd --\n"+
		xsdDoc("urn:orders", addressType+money("xs:decimal"))+
		"-- schemas/Billing/billing.xsd --\n"+
		xsdDoc("urn:billing", addressType+money("xs:int")))
	return filepath.Join(dir, "schemas")
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return text.Text
}
