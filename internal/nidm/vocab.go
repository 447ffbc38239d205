package nidm

// Namespace binds a prefix to an IRI base.
type Namespace struct {
	Prefix string `yaml:"prefix"`
	IRI    string `yaml:"iri"`
}

// Term renders prefix:local for this namespace.
func (n Namespace) Term(local string) QName {
	return QName(n.Prefix + ":" + local)
}

// QName is a compact IRI such as "prov:Agent".
type QName string

var (
	PROV   = Namespace{Prefix: "prov", IRI: "http://www.w3.org/ns/prov#"}
	NIDM   = Namespace{Prefix: "nidm", IRI: "http://purl.org/nidash/nidm#"}
	NIIRI  = Namespace{Prefix: "niiri", IRI: "http://iri.nidash.org/"}
	NLXOld = Namespace{Prefix: "nlx_old", IRI: "http://neurolex.org/wiki/"}
	AFNI   = Namespace{Prefix: "afni", IRI: "http://purl.org/nidash/afni#"}
)

// Terms used by the software agent record.
var (
	ProvAgent           = PROV.Term("Agent")
	ProvSoftwareAgent   = PROV.Term("SoftwareAgent")
	ProvLabel           = PROV.Term("label")
	NIDMSoftwareVersion = NIDM.Term("NIDM_0000122")
	NLXAFNI             = NLXOld.Term("nif-0000-00259")
)

// BaseNamespaces are declared by every export regardless of back-end.
func BaseNamespaces() []Namespace {
	return []Namespace{PROV, NIDM, NIIRI, NLXOld}
}
