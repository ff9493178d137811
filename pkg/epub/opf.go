package epub

import "encoding/xml"

// container.xml
type containerXML struct {
	XMLName   xml.Name      `xml:"container"`
	RootFiles []rootFileXML `xml:"rootfiles>rootfile"`
}

type rootFileXML struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// OPF package document
type packageXML struct {
	XMLName  xml.Name    `xml:"package"`
	Version  string      `xml:"version,attr"`
	Metadata metadataXML `xml:"metadata"`
	Manifest manifestXML `xml:"manifest"`
	Spine    spineXML    `xml:"spine"`
}

type metadataXML struct {
	Titles    []string `xml:"title"`
	Languages []string `xml:"language"`
}

type manifestXML struct {
	Items []manifestItemXML `xml:"item"`
}

type manifestItemXML struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

type spineXML struct {
	ItemRefs []itemRefXML `xml:"itemref"`
}

type itemRefXML struct {
	IDRef string `xml:"idref,attr"`
}
