package constants

// DocumentKind is the declared kind of an uploaded artifact.
type DocumentKind string

// Stable values (store these exact strings in DB and reports).
const (
	DocTraveler DocumentKind = "TRAVELER" // work-instruction / job-routing PDF
	DocBOM      DocumentKind = "BOM"      // bill-of-materials spreadsheet
	DocImageSet DocumentKind = "IMAGE"    // product photograph(s)
)

// DocumentKinds lists every kind a session is expected to carry, in report order.
var DocumentKinds = []DocumentKind{DocTraveler, DocBOM, DocImageSet}

// FieldKind identifies one identifier family extracted from a document.
type FieldKind string

const (
	FieldJobNumber    FieldKind = "JOB_NUMBER"
	FieldPartNumber   FieldKind = "PART_NUMBER"
	FieldBoardSerial  FieldKind = "BOARD_SERIAL"
	FieldUnitSerial   FieldKind = "UNIT_SERIAL"
	FieldRevision     FieldKind = "REVISION"
	FieldFlightStatus FieldKind = "FLIGHT_STATUS"
)

// FieldKinds lists every family in a stable order.
var FieldKinds = []FieldKind{
	FieldJobNumber,
	FieldPartNumber,
	FieldBoardSerial,
	FieldUnitSerial,
	FieldRevision,
	FieldFlightStatus,
}

// SingularFieldKinds are the families a document is expected to carry at most
// one value for. Parts and serials are multi-valued.
var SingularFieldKinds = map[FieldKind]bool{
	FieldJobNumber:    true,
	FieldRevision:     true,
	FieldFlightStatus: true,
}
