package ptp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrganizationExtensionLayout(t *testing.T) {
	b := []byte{
		0x00, 0x03, // type ORGANIZATION_EXTENSION
		0x00, 0x10, // length 16
		0x00, 0x80, 0xC2, // organizationId
		0x00, 0x00, 0x01, // organizationSubType
		0x00, 0x01, 0x00, 0x00, 0x00, 0x02, // seconds
		0x00, 0x00, 0x00, 0x03, // nanoseconds
	}
	tlvs, err := DecodeTLVs(b)
	require.NoError(t, err)
	want := []TLV{&OrganizationExtensionTLV{
		OrganizationID: [3]byte{0x00, 0x80, 0xC2},
		Subtype:        [3]byte{0x00, 0x00, 0x01},
		Data:           Timestamp{Seconds: 0x1_00000002, Nanoseconds: 3},
	}}
	if diff := cmp.Diff(want, tlvs); diff != "" {
		t.Errorf("DecodeTLVs mismatch (-want +got):\n%s", diff)
	}

	again, err := EncodeTLVs(tlvs)
	require.NoError(t, err)
	assert.Equal(t, b, again)
}

func TestUnknownTLVPassesThrough(t *testing.T) {
	b := []byte{0x80, 0x01, 0x00, 0x02, 0xAB, 0xCD}
	tlvs, err := DecodeTLVs(b)
	require.NoError(t, err)
	require.Len(t, tlvs, 1)
	assert.Equal(t, &RawTLV{Type: 0x8001, Value: []byte{0xAB, 0xCD}}, tlvs[0])
	assert.Equal(t, "TLV(0x8001)", tlvs[0].TLVType().String())
}

func TestDecodeTLVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want error
	}{
		{"one stray byte", []byte{0x00}, ErrTrailingGarbage},
		{"three stray bytes", []byte{0x00, 0x08, 0x00}, ErrTrailingGarbage},
		{"stray after record", []byte{0x00, 0x08, 0x00, 0x00, 0x01}, ErrTrailingGarbage},
		{"odd length", []byte{0x00, 0x08, 0x00, 0x01, 0xFF}, ErrInvalidLength},
		{"short value", []byte{0x00, 0x08, 0x00, 0x04, 0x01, 0x02}, ErrTruncated},
		{"organization extension too short", []byte{0x00, 0x03, 0x00, 0x02, 0x01, 0x02}, ErrInvalidLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tlvs, err := DecodeTLVs(tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, tlvs)
		})
	}
}

func TestTLVsIsLazy(t *testing.T) {
	// second record is malformed, first must still be yielded and the
	// consumer can stop before reaching it
	b := []byte{
		0x00, 0x08, 0x00, 0x02, 0x11, 0x22,
		0x00, 0x08, 0x00, 0x03,
	}
	var seen []TLV
	for tlv, err := range TLVs(b) {
		require.NoError(t, err)
		seen = append(seen, tlv)
		break
	}
	require.Len(t, seen, 1)

	var errs int
	for _, err := range TLVs(b) {
		if err != nil {
			errs++
		}
	}
	assert.Equal(t, 1, errs)
}

func TestTLVsEmpty(t *testing.T) {
	tlvs, err := DecodeTLVs(nil)
	require.NoError(t, err)
	assert.Nil(t, tlvs)

	b, err := EncodeTLVs(nil)
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestEncodeTLVsKeepsOrder(t *testing.T) {
	tlvs := []TLV{
		&RawTLV{Type: TLVPathTrace, Value: []byte{0x01, 0x02}},
		&RawTLV{Type: TLVManagement, Value: []byte{0x03, 0x04}},
	}
	b, err := EncodeTLVs(tlvs)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x00, 0x08, 0x00, 0x02, 0x01, 0x02,
		0x00, 0x01, 0x00, 0x02, 0x03, 0x04,
	}, b)
}
