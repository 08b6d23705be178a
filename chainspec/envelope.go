// Package chainspec wraps genesis states into distributable chain
// specifications and reads the frozen specifications of published networks.
package chainspec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/oasisprotocol/oasis-core/go/common/crypto/hash"

	"github.com/zihgir1/BEVM/common"
	"github.com/zihgir1/BEVM/genesis"
	"github.com/zihgir1/BEVM/params"
)

// FormatVersion is the version of the envelope encoding.
const FormatVersion = 1

// ErrMalformedSnapshot is returned when a frozen snapshot does not decode,
// does not match the profile metadata, or does not re-encode to the same
// bytes.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// TelemetryEndpoint encodes as a [url, verbosity] pair.
type TelemetryEndpoint params.TelemetryEndpoint

func (t TelemetryEndpoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{t.URL, t.Verbosity})
}

func (t *TelemetryEndpoint) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("telemetry endpoint: expected [url, verbosity], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &t.URL); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &t.Verbosity)
}

// Genesis is the genesis section of an envelope: either a freshly
// assembled document or the raw runtime genesis of a frozen snapshot.
type Genesis struct {
	doc *genesis.Document
	raw json.RawMessage
}

type genesisJSON struct {
	Runtime json.RawMessage `json:"runtime"`
}

func (g Genesis) MarshalJSON() ([]byte, error) {
	runtime := g.raw
	if g.doc != nil {
		var err error
		if runtime, err = json.Marshal(g.doc); err != nil {
			return nil, err
		}
	}
	if runtime == nil {
		return nil, fmt.Errorf("chainspec: empty genesis")
	}
	return json.Marshal(genesisJSON{Runtime: runtime})
}

func (g *Genesis) UnmarshalJSON(data []byte) error {
	var out genesisJSON
	if err := strictDecode(data, &out); err != nil {
		return err
	}
	if len(out.Runtime) == 0 || bytes.Equal(out.Runtime, []byte("null")) {
		return fmt.Errorf("genesis: missing runtime section")
	}
	*g = Genesis{raw: out.Runtime}
	return nil
}

// IsFrozen reports whether the genesis was read from a frozen snapshot.
func (g *Genesis) IsFrozen() bool {
	return g.doc == nil
}

// Document returns the genesis document. For frozen snapshots the raw
// bytes are decoded into a new document on every call and are not changed.
func (g *Genesis) Document() (*genesis.Document, error) {
	if g.doc != nil {
		return g.doc, nil
	}
	var doc genesis.Document
	if err := strictDecode(g.raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: runtime genesis: %v", ErrMalformedSnapshot, err)
	}
	return &doc, nil
}

// Hash returns the genesis document hash.
func (g *Genesis) Hash() (hash.Hash, error) {
	doc, err := g.Document()
	if err != nil {
		return hash.Hash{}, err
	}
	return doc.Hash()
}

// Envelope is a distributable chain specification.
type Envelope struct {
	FormatVersion      uint32                     `json:"formatVersion"`
	Name               string                     `json:"name"`
	ID                 string                     `json:"id"`
	ChainType          common.ChainType           `json:"chainType"`
	BootNodes          []string                   `json:"bootNodes"`
	TelemetryEndpoints []TelemetryEndpoint        `json:"telemetryEndpoints"`
	ProtocolID         string                     `json:"protocolId"`
	Properties         params.Properties          `json:"properties"`
	ForkBlocks         json.RawMessage            `json:"forkBlocks"`
	BadBlocks          json.RawMessage            `json:"badBlocks"`
	LightSyncState     json.RawMessage            `json:"lightSyncState"`
	CodeSubstitutes    map[string]json.RawMessage `json:"codeSubstitutes"`
	Genesis            Genesis                    `json:"genesis"`
}

// Wrap wraps a freshly assembled genesis document with distribution
// metadata.
func Wrap(doc *genesis.Document, meta params.Metadata) *Envelope {
	env := Envelope{
		FormatVersion:      FormatVersion,
		Name:               meta.Name,
		ID:                 meta.ID,
		ChainType:          meta.ChainType,
		BootNodes:          append([]string{}, meta.BootNodes...),
		TelemetryEndpoints: make([]TelemetryEndpoint, 0, len(meta.Telemetry)),
		ProtocolID:         meta.ProtocolID,
		Properties:         meta.Properties,
		CodeSubstitutes:    map[string]json.RawMessage{},
		Genesis:            Genesis{doc: doc},
	}
	for _, t := range meta.Telemetry {
		env.TelemetryEndpoints = append(env.TelemetryEndpoints, TelemetryEndpoint(t))
	}
	return &env
}

// Encode returns the canonical encoding of an envelope: JSON with two
// space indentation and a trailing newline.
func Encode(env *Envelope) ([]byte, error) {
	raw, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("chainspec: encoding %s: %w", env.ID, err)
	}
	return append(raw, '\n'), nil
}

func strictDecode(data []byte, out interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("trailing data after JSON value")
	}
	return nil
}

// Load reads a frozen snapshot for the profile described by meta. The
// snapshot is taken as published: nothing is reconstructed, but it must
// decode strictly, match the profile metadata, and re-encode to exactly
// the input bytes.
func Load(data []byte, meta params.Metadata) (*Envelope, error) {
	var env Envelope
	if err := strictDecode(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	switch {
	case env.FormatVersion != FormatVersion:
		return nil, fmt.Errorf("%w: format version %d, want %d", ErrMalformedSnapshot, env.FormatVersion, FormatVersion)
	case env.Name != meta.Name || env.ID != meta.ID:
		return nil, fmt.Errorf("%w: snapshot of '%s' (%s), want '%s' (%s)", ErrMalformedSnapshot, env.Name, env.ID, meta.Name, meta.ID)
	}

	if _, err := env.Genesis.Document(); err != nil {
		return nil, err
	}

	encoded, err := Encode(&env)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if !bytes.Equal(encoded, data) {
		return nil, fmt.Errorf("%w: %s does not re-encode byte-identically", ErrMalformedSnapshot, meta.ID)
	}
	return &env, nil
}
