package soap

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/joe-ervin05/tablestore/daos"
)

// Fault codes.
const (
	FaultClient = "soap:Client"
	FaultServer = "soap:Server"
)

type envelope struct {
	XMLName xml.Name `xml:"soap:Envelope"`
	Soap    string   `xml:"xmlns:soap,attr"`
	NS      string   `xml:"xmlns:ns1,attr"`
	Xsi     string   `xml:"xmlns:xsi,attr"`
	Xsd     string   `xml:"xmlns:xsd,attr"`
	Body    body     `xml:"soap:Body"`
}

type body struct {
	Content any
}

// response is the {operation}Response element. Only the fields an operation sets are written.
type response struct {
	XMLName      xml.Name
	Message      string      `xml:"message,omitempty"`
	BackupPath   string      `xml:"backupPath,omitempty"`
	FileName     string      `xml:"fileName,omitempty"`
	Checksum     string      `xml:"blake3,omitempty"`
	LastInsertID *int64      `xml:"lastInsertId"`
	AffectedRows *int64      `xml:"affectedRows"`
	Records      *records    `xml:"records"`
	Schema       *fieldList  `xml:"schema"`
	Tables       *tableList  `xml:"tables"`
	Backups      *backupList `xml:"backups"`
}

type fault struct {
	XMLName xml.Name     `xml:"soap:Fault"`
	Code    string       `xml:"faultcode"`
	String  string       `xml:"faultstring"`
	Detail  *faultDetail `xml:"detail,omitempty"`
}

type faultDetail struct {
	Kind string `xml:"kind"`
}

type records struct {
	Rows []row `xml:"row"`
}

type row struct {
	Items []keyValue `xml:"item"`
}

type keyValue struct {
	Key   string     `xml:"key"`
	Value typedValue `xml:"value"`
}

type typedValue struct {
	Type string `xml:"xsi:type,attr,omitempty"`
	Nil  string `xml:"xsi:nil,attr,omitempty"`
	Text string `xml:",chardata"`
}

type fieldList struct {
	Fields []fieldInfo `xml:"field"`
}

type fieldInfo struct {
	CID        int64      `xml:"cid"`
	Name       string     `xml:"name"`
	Type       string     `xml:"type"`
	NotNull    int        `xml:"notnull"`
	Default    typedValue `xml:"dflt_value"`
	PrimaryKey int64      `xml:"pk"`
}

type tableList struct {
	Tables []tableSchema `xml:"table"`
}

type tableSchema struct {
	TableName string    `xml:"tableName"`
	Fields    fieldList `xml:"fields"`
}

type backupList struct {
	Backups []backupInfo `xml:"backup"`
}

type backupInfo struct {
	FileName  string `xml:"fileName"`
	Path      string `xml:"backupPath"`
	Checksum  string `xml:"blake3"`
	Size      int64  `xml:"size"`
	CreatedAt string `xml:"createdAt"`
}

func newEnvelope(content any) envelope {
	return envelope{
		Soap: EnvelopeNS,
		NS:   ServiceNS,
		Xsi:  xsiNS,
		Xsd:  xsdNS,
		Body: body{Content: content},
	}
}

func writeEnvelope(w http.ResponseWriter, status int, content any) {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(xml.Header))
	xml.NewEncoder(w).Encode(newEnvelope(content))
}

func writeFault(w http.ResponseWriter, code string, err error) {
	f := fault{Code: code, String: err.Error()}
	if kind := daos.KindOf(err); kind != daos.KindInternal {
		f.Detail = &faultDetail{Kind: kind}
	}
	writeEnvelope(w, http.StatusInternalServerError, f)
}

// encodeValue renders a column value with its xsi:type.
func encodeValue(v any) typedValue {
	switch val := v.(type) {
	case nil:
		return typedValue{Nil: "true"}
	case int64:
		return typedValue{Type: "xsd:long", Text: strconv.FormatInt(val, 10)}
	case int:
		return typedValue{Type: "xsd:long", Text: strconv.Itoa(val)}
	case float64:
		return typedValue{Type: "xsd:double", Text: strconv.FormatFloat(val, 'g', -1, 64)}
	case bool:
		return typedValue{Type: "xsd:boolean", Text: strconv.FormatBool(val)}
	case []byte:
		return typedValue{Type: "xsd:base64Binary", Text: base64.StdEncoding.EncodeToString(val)}
	case time.Time:
		return typedValue{Type: "xsd:dateTime", Text: val.Format(time.RFC3339)}
	case string:
		return typedValue{Type: "xsd:string", Text: val}
	}
	return typedValue{Type: "xsd:string", Text: fmt.Sprint(v)}
}

func encodeRecords(rows []daos.Record) *records {
	out := &records{Rows: make([]row, len(rows))}
	for i, rec := range rows {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		items := make([]keyValue, len(keys))
		for j, k := range keys {
			items[j] = keyValue{Key: k, Value: encodeValue(rec[k])}
		}
		out.Rows[i] = row{Items: items}
	}
	return out
}

func encodeFields(cols []daos.ColumnInfo) fieldList {
	fields := make([]fieldInfo, len(cols))
	for i, col := range cols {
		notNull := 0
		if col.NotNull {
			notNull = 1
		}
		fields[i] = fieldInfo{
			CID:        col.CID,
			Name:       col.Name,
			Type:       col.Type,
			NotNull:    notNull,
			Default:    encodeValue(col.Default),
			PrimaryKey: col.PrimaryKey,
		}
	}
	return fieldList{Fields: fields}
}
