package wizard

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"strconv"
	"strings"
)

// Payload is the assembled multipart request body for one submission.
type Payload struct {
	ContentType string
	Body        []byte
}

// AttachmentOpener resolves an attachment's local reference to its bytes.
// The default implementation opens it as a file path; clients on platforms
// with content URIs inject their own.
type AttachmentOpener func(localRef string) (io.ReadCloser, error)

func openLocalFile(localRef string) (io.ReadCloser, error) {
	return os.Open(strings.TrimPrefix(localRef, "file://"))
}

type field struct {
	name  string
	value string
}

// scalarFields flattens the draft into ordered (name, value) pairs. The
// names are the wire contract the report-service parses; empty values are
// skipped at emission, booleans are always emitted as "true"/"false".
func scalarFields(d *Draft) []field {
	fields := []field{
		{"isAnonymous", strconv.FormatBool(d.Mode == ModeAnonymous)},
	}

	if d.Identified != nil {
		f := d.Identified
		fields = append(fields,
			field{"lastName", f.LastName},
			field{"firstName", f.FirstName},
			field{"middleInitial", f.MiddleInitial},
			field{"sex", f.Sex},
			field{"age", f.Age},
			field{"college", f.College},
			field{"course", f.Course},
			field{"yearSection", f.YearSection},
			field{"email", f.Email},
			field{"contactNumber", f.ContactNumber},
			field{"guardianLastName", f.GuardianLastName},
			field{"guardianFirstName", f.GuardianFirstName},
			field{"guardianContact", f.GuardianContact},
		)
	}
	if d.Anonymous != nil {
		f := d.Anonymous
		fields = append(fields,
			field{"reporterRole", f.ReporterRole},
			field{"tupRole", f.TUPRole},
			field{"college", f.College},
		)
	}

	p := d.Perpetrator
	fields = append(fields,
		field{"perpLastName", p.LastName},
		field{"perpFirstName", p.FirstName},
		field{"perpMiddleInitial", p.MiddleInitial},
		field{"perpSex", p.Sex},
		field{"perpTupRole", p.TUPRole},
		field{"perpRelationship", p.Relationship},
	)

	i := d.Incident
	fields = append(fields,
		field{"otherIncidentType", i.OtherIncidentType},
		field{"latestIncidentDate", i.LatestIncidentDate},
		field{"incidentLocation", i.IncidentLocation},
		field{"description", i.Description},
		field{"confirmAccuracy", strconv.FormatBool(d.ConfirmAccuracy)},
		field{"confirmConfidentiality", strconv.FormatBool(d.ConfirmConfidentiality)},
	)

	return fields
}

// MIMEForKind maps a declared attachment kind to the upload MIME type. The
// declared kind is the only discrimination performed; file contents are
// never sniffed client-side.
func MIMEForKind(kind AttachmentKind) string {
	if kind == KindVideo {
		return "video/mp4"
	}
	return "image/jpeg"
}

// Assemble builds the multipart payload with attachments read from local
// file paths.
func Assemble(d *Draft) (*Payload, error) {
	return AssembleWith(d, openLocalFile)
}

// AssembleWith builds the wire payload for the completed draft:
//
//   - each non-empty scalar is one text part named after the field
//   - incidentTypes is repeated as one "incidentTypes[]" part per element,
//     in selection order (the backend parser expects this convention)
//   - each attachment is one binary part named "attachments" carrying its
//     kind-derived MIME type and original filename
//
// The anonymity flag is always emitted regardless of mode.
func AssembleWith(d *Draft, open AttachmentOpener) (*Payload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range scalarFields(d) {
		if f.value == "" {
			continue
		}
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("write field %s: %w", f.name, err)
		}
	}

	for _, t := range d.Incident.IncidentTypes {
		if err := w.WriteField("incidentTypes[]", t); err != nil {
			return nil, fmt.Errorf("write incident type: %w", err)
		}
	}

	for _, a := range d.Attachments {
		if err := writeAttachment(w, a, open); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize payload: %w", err)
	}

	return &Payload{ContentType: w.FormDataContentType(), Body: buf.Bytes()}, nil
}

func writeAttachment(w *multipart.Writer, a Attachment, open AttachmentOpener) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="attachments"; filename=%q`, a.FileName))
	h.Set("Content-Type", MIMEForKind(a.Kind))

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create attachment part %s: %w", a.FileName, err)
	}

	src, err := open(a.LocalRef)
	if err != nil {
		return fmt.Errorf("open attachment %s: %w", a.FileName, err)
	}
	defer src.Close()

	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("copy attachment %s: %w", a.FileName, err)
	}
	return nil
}
