package promoter_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mdraley/xsdtools/promoter"
)

func writeSchema(dir, name, tns, element string) {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" xmlns="` + tns + `" targetNamespace="` + tns + `">
  <xs:complexType name="AddressType">
    <xs:sequence>
      <xs:element name="Street" type="xs:string"/>
    </xs:sequence>
  </xs:complexType>
  <xs:element name="` + element + `" type="AddressType"/>
</xs:schema>
`
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		log.Fatal(err)
	}
}

// Example promotes a type duplicated in two schemas into a common schema.
func Example() {
	dir, err := os.MkdirTemp("", "promoter-example")
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(dir) }()
	writeSchema(dir, "orders.xsd", "urn:orders", "Order")
	writeSchema(dir, "customers.xsd", "urn:customers", "Customer")

	result, err := promoter.PromoteWithOptions(context.Background(),
		promoter.WithRoots(dir),
		promoter.WithCommonSchema(filepath.Join(dir, "common", "Common.xsd")),
		promoter.WithNamespace("urn:example:common"),
	)
	if err != nil {
		log.Fatalf("promotion failed: %v", err)
	}

	orders, err := os.ReadFile(filepath.Join(dir, "orders.xsd"))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Promoted: %d\n", result.Summary.Promoted)
	fmt.Printf("Demoted: %d\n", result.Summary.Demoted)
	fmt.Printf("Rewritten: %v\n", strings.Contains(string(orders), `type="c:AddressType"`))
	// Output:
	// Promoted: 1
	// Demoted: 2
	// Rewritten: true
}

// Example_dryRun reports the plan without touching schema files.
func Example_dryRun() {
	dir, err := os.MkdirTemp("", "promoter-dryrun")
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = os.RemoveAll(dir) }()
	writeSchema(dir, "orders.xsd", "urn:orders", "Order")
	writeSchema(dir, "customers.xsd", "urn:customers", "Customer")

	cfg := promoter.DefaultConfig()
	cfg.Roots = []string{dir}
	cfg.CommonSchema = filepath.Join(dir, "Common.xsd")
	cfg.Namespace = "urn:example:common"
	cfg.DryRun = true
	result, err := promoter.New(cfg).Run(context.Background())
	if err != nil {
		log.Fatalf("promotion failed: %v", err)
	}

	for _, p := range result.Promotions {
		fmt.Printf("%s %s (%s)\n", p.Kind, p.Name, p.Resolution)
	}
	fmt.Printf("Would write: %d file(s)\n", len(result.Written))
	_, err = os.Stat(filepath.Join(dir, "Common.xsd"))
	fmt.Printf("Common exists: %v\n", err == nil)
	// Output:
	// complexType AddressType (identical)
	// Would write: 3 file(s)
	// Common exists: false
}
