package domain

import "encoding/xml"

// NFeProc is the subset of an authorized NF-e (nfeProc) read during ingestion.
type NFeProc struct {
	XMLName xml.Name `xml:"nfeProc"`
	NFe     NFeXML   `xml:"NFe"`
	ProtNFe struct {
		InfProt struct {
			ChNFe string `xml:"chNFe"`
		} `xml:"infProt"`
	} `xml:"protNFe"`
}

type NFeXML struct {
	InfNFe struct {
		ID  string `xml:"Id,attr"`
		Ide struct {
			Serie string `xml:"serie"`
			NNF   string `xml:"nNF"`
		} `xml:"ide"`
		Det []NFeDet `xml:"det"`
	} `xml:"infNFe"`
}

// NFeDet is one item (det) of the invoice.
type NFeDet struct {
	Prod struct {
		CFOP  string `xml:"CFOP"`
		VProd string `xml:"vProd"`
	} `xml:"prod"`
	Imposto struct {
		PIS struct {
			PISAliq struct {
				CST string `xml:"CST"`
			} `xml:"PISAliq"`
			PISQtde struct {
				CST string `xml:"CST"`
			} `xml:"PISQtde"`
			PISNT struct {
				CST string `xml:"CST"`
			} `xml:"PISNT"`
			PISOutr struct {
				CST string `xml:"CST"`
			} `xml:"PISOutr"`
		} `xml:"PIS"`
	} `xml:"imposto"`
}

// PISCST returns the CST of whichever PIS group the item carries.
func (d NFeDet) PISCST() string {
	pis := d.Imposto.PIS
	switch {
	case pis.PISAliq.CST != "":
		return pis.PISAliq.CST
	case pis.PISQtde.CST != "":
		return pis.PISQtde.CST
	case pis.PISNT.CST != "":
		return pis.PISNT.CST
	default:
		return pis.PISOutr.CST
	}
}
