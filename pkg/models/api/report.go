package api

import "encoding/xml"

type Report struct {
	Resource   string           `json:"resource"`
	ID         int64            `json:"id"`
	State      string           `json:"state"`
	NewRecord  bool             `json:"new_record"`
	Attributes map[string]any   `json:"attributes"`
	Errors     []string         `json:"errors"`
	Entries    []map[string]any `json:"entries"`
}

type Errors struct {
	Errors []string `json:"errors"`
}

type ReportResource struct {
	Name       string   `json:"name"`
	Attributes []string `json:"attributes"`
	CSV        bool     `json:"csv"`
}

// XML representations. encoding/xml cannot marshal maps, so attributes and
// entry fields are lists of named values.

type Field struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type EntryXML struct {
	Fields []Field `xml:"field"`
}

type ReportXML struct {
	XMLName    xml.Name   `xml:"report"`
	Resource   string     `xml:"resource,attr"`
	ID         int64      `xml:"id"`
	State      string     `xml:"state"`
	NewRecord  bool       `xml:"new-record"`
	Attributes []Field    `xml:"attributes>attribute"`
	Errors     []string   `xml:"errors>error"`
	Entries    []EntryXML `xml:"entries>entry"`
}

type ErrorsXML struct {
	XMLName xml.Name `xml:"errors"`
	Errors  []string `xml:"error"`
}
