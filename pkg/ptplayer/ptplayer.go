// Package ptplayer plugs the ptp codec into gopacket.
//
// Importing the package registers LayerTypePTP behind UDP ports 319 and 320
// and EtherType 0x88F7, so gopacket.NewPacket and DecodingLayerParser
// produce *PTP layers without further setup.
package ptplayer

import (
	"errors"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"firestige.xyz/ptpwire/pkg/ptp"
)

// LayerTypePTP is the gopacket layer type of a PTP message.
var LayerTypePTP = gopacket.RegisterLayerType(1588, gopacket.LayerTypeMetadata{
	Name:    "PTP",
	Decoder: gopacket.DecodeFunc(decodePTP),
})

func init() {
	layers.RegisterUDPPortLayerType(layers.UDPPort(ptp.PortEvent), LayerTypePTP)
	layers.RegisterUDPPortLayerType(layers.UDPPort(ptp.PortGeneral), LayerTypePTP)
	layers.EthernetTypeMetadata[ptp.EtherType] = layers.EnumMetadata{
		DecodeWith: LayerTypePTP,
		Name:       "PTP",
		LayerType:  LayerTypePTP,
	}
}

// PTP is a decoded PTP message. Contents covers messageLength bytes; any
// bytes after it are left in Payload.
type PTP struct {
	layers.BaseLayer
	Message ptp.Message
}

var (
	_ gopacket.DecodingLayer     = (*PTP)(nil)
	_ gopacket.SerializableLayer = (*PTP)(nil)
	_ gopacket.ApplicationLayer  = (*PTP)(nil)
)

func (p *PTP) LayerType() gopacket.LayerType { return LayerTypePTP }

func (p *PTP) CanDecode() gopacket.LayerClass { return LayerTypePTP }

func (p *PTP) NextLayerType() gopacket.LayerType {
	if len(p.BaseLayer.Payload) > 0 {
		return gopacket.LayerTypePayload
	}
	return gopacket.LayerTypeZero
}

// Payload returns the bytes after messageLength, usually empty.
func (p *PTP) Payload() []byte { return p.BaseLayer.Payload }

func (p *PTP) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	m, err := ptp.Decode(data)
	if err != nil {
		if errors.Is(err, ptp.ErrTruncated) {
			df.SetTruncated()
		}
		return err
	}
	n := int(m.MessageHeader().MessageLength)
	p.BaseLayer = layers.BaseLayer{Contents: data[:n], Payload: data[n:]}
	p.Message = m
	return nil
}

// SerializeTo prepends the encoded message. messageLength is always
// computed, so opts.FixLengths has no effect.
func (p *PTP) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	if p.Message == nil {
		return errors.New("ptplayer: no message to serialize")
	}
	enc, err := ptp.Encode(p.Message)
	if err != nil {
		return err
	}
	bytes, err := b.PrependBytes(len(enc))
	if err != nil {
		return err
	}
	copy(bytes, enc)
	return nil
}

func decodePTP(data []byte, pb gopacket.PacketBuilder) error {
	p := &PTP{}
	if err := p.DecodeFromBytes(data, pb); err != nil {
		return err
	}
	pb.AddLayer(p)
	pb.SetApplicationLayer(p)
	if len(p.BaseLayer.Payload) == 0 {
		return nil
	}
	return pb.NextDecoder(gopacket.LayerTypePayload)
}

// FromPacket returns the PTP layer of pkt, if any.
func FromPacket(pkt gopacket.Packet) (*PTP, bool) {
	l := pkt.Layer(LayerTypePTP)
	if l == nil {
		return nil, false
	}
	p, ok := l.(*PTP)
	return p, ok
}
