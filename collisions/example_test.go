package collisions_test

import (
	"fmt"
	"log"

	"github.com/mdraley/xsdtools/collisions"
	"github.com/mdraley/xsdtools/schema"
)

const service = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" xmlns:tns="urn:svc" targetNamespace="urn:svc">
  <xs:element name="Booking" type="tns:Booking"/>
  <xs:complexType name="Booking">
    <xs:sequence>
      <xs:element name="Hotel" type="xs:string"/>
    </xs:sequence>
  </xs:complexType>
</xs:schema>
`

// Example finds the element and type sharing a name, renames the type and
// then gives the original file its final type name.
func Example() {
	doc, err := schema.Parse("Service.xsd", []byte(service))
	if err != nil {
		log.Fatal(err)
	}
	for _, g := range collisions.Find(doc, collisions.FindOptions{}) {
		fmt.Println(g)
	}

	fixed, err := collisions.Fix(doc, collisions.FixOptions{})
	if err != nil {
		log.Fatal(err)
	}
	for _, r := range fixed.Renames {
		fmt.Println(r)
	}

	original, err := schema.Parse("Service.xsd", []byte(service))
	if err != nil {
		log.Fatal(err)
	}
	final := collisions.Finalize(original, doc)
	fmt.Println(final.Renames[0], "refs:", final.References)
	// Output:
	// Booking (2): element:3, complexType:4
	// complexType Booking -> Booking_x2 (line 4)
	// complexType Booking -> BookingType (line 4) refs: 1
}
