package filter

import (
	"fmt"
	"strings"

	"golang.org/x/net/bpf"

	"firestige.xyz/ptpwire/pkg/ptp"
)

const (
	etherTypeIPv4 = 0x0800
	etherTypeIPv6 = 0x86DD
	etherTypeVLAN = 0x8100
	protocolUDP   = 17

	// IPv4 MF flag and fragment offset; DF is allowed
	ipv4FragmentMask = 0x3FFF
)

// BPFFilter runs a classic BPF program in the userspace VM.
type BPFFilter struct {
	vm      *bpf.VM
	program []bpf.Instruction
}

// NewBPFFilter validates program and loads it into a VM.
func NewBPFFilter(program []bpf.Instruction) (*BPFFilter, error) {
	vm, err := bpf.NewVM(program)
	if err != nil {
		return nil, fmt.Errorf("load bpf program: %w", err)
	}
	return &BPFFilter{vm: vm, program: program}, nil
}

// NewPTPFilter builds the BPF program that keeps PTP over Ethernet and PTP
// over UDP on ports (both directions), with at most one VLAN tag. IPv4
// fragments are dropped. With no ports, 319 and 320 are used.
func NewPTPFilter(snapLen uint32, ports ...uint16) (*BPFFilter, error) {
	if len(ports) == 0 {
		ports = []uint16{ptp.PortEvent, ptp.PortGeneral}
	}
	if snapLen == 0 {
		snapLen = 65535
	}
	program, err := ptpProgram(snapLen, ports)
	if err != nil {
		return nil, err
	}
	return NewBPFFilter(program)
}

// Match implements Filter. A VM error drops the frame.
func (f *BPFFilter) Match(data []byte) bool {
	n, err := f.vm.Run(data)
	return err == nil && n > 0
}

// Raw returns the program in kernel form, e.g. for SO_ATTACH_FILTER.
func (f *BPFFilter) Raw() ([]bpf.RawInstruction, error) {
	return bpf.Assemble(f.program)
}

// String renders the program one instruction per line.
func (f *BPFFilter) String() string {
	var sb strings.Builder
	for i, ins := range f.program {
		fmt.Fprintf(&sb, "(%03d) %v\n", i, ins)
	}
	return sb.String()
}

func ptpProgram(snapLen uint32, ports []uint16) ([]bpf.Instruction, error) {
	a := newAssembler()

	a.emit(bpf.LoadAbsolute{Off: 12, Size: 2})
	a.jumpIf(bpf.JumpEqual, etherTypeVLAN, "vlan", "")
	ptpBlock(a, "plain", 14, ports)
	a.label("vlan")
	ptpBlock(a, "vlan", 18, ports)

	a.label("accept")
	a.emit(bpf.RetConstant{Val: snapLen})
	a.label("reject")
	a.emit(bpf.RetConstant{Val: 0})

	return a.assemble()
}

// ptpBlock matches one frame layout whose L3 header starts at l3.
func ptpBlock(a *assembler, name string, l3 uint32, ports []uint16) {
	ipv4, ipv6 := name+".ipv4", name+".ipv6"

	a.emit(bpf.LoadAbsolute{Off: l3 - 2, Size: 2})
	a.jumpIf(bpf.JumpEqual, ptp.EtherType, "accept", "")
	a.jumpIf(bpf.JumpEqual, etherTypeIPv4, ipv4, "")
	a.jumpIf(bpf.JumpEqual, etherTypeIPv6, ipv6, "reject")

	a.label(ipv4)
	a.emit(bpf.LoadAbsolute{Off: l3 + 9, Size: 1})
	a.jumpIf(bpf.JumpNotEqual, protocolUDP, "reject", "")
	a.emit(bpf.LoadAbsolute{Off: l3 + 6, Size: 2})
	a.jumpIf(bpf.JumpBitsSet, ipv4FragmentMask, "reject", "")
	a.emit(bpf.LoadMemShift{Off: l3})
	a.emit(bpf.LoadIndirect{Off: l3, Size: 2})
	portChecks(a, ports)
	a.emit(bpf.LoadIndirect{Off: l3 + 2, Size: 2})
	portChecks(a, ports)
	a.jump("reject")

	a.label(ipv6)
	a.emit(bpf.LoadAbsolute{Off: l3 + 6, Size: 1})
	a.jumpIf(bpf.JumpNotEqual, protocolUDP, "reject", "")
	a.emit(bpf.LoadAbsolute{Off: l3 + 40, Size: 2})
	portChecks(a, ports)
	a.emit(bpf.LoadAbsolute{Off: l3 + 42, Size: 2})
	portChecks(a, ports)
	a.jump("reject")
}

func portChecks(a *assembler, ports []uint16) {
	for _, p := range ports {
		a.jumpIf(bpf.JumpEqual, uint32(p), "accept", "")
	}
}

// assembler resolves symbolic jump targets into the relative skips classic
// BPF uses. An empty label means the next instruction.
type assembler struct {
	ins    []bpf.Instruction
	labels map[string]int
	fixups []fixup
}

type fixup struct {
	at              int
	onTrue, onFalse string
	always          bool
}

func newAssembler() *assembler {
	return &assembler{labels: make(map[string]int)}
}

func (a *assembler) emit(ins bpf.Instruction) {
	a.ins = append(a.ins, ins)
}

func (a *assembler) label(name string) {
	a.labels[name] = len(a.ins)
}

func (a *assembler) jumpIf(cond bpf.JumpTest, val uint32, onTrue, onFalse string) {
	a.fixups = append(a.fixups, fixup{at: len(a.ins), onTrue: onTrue, onFalse: onFalse})
	a.ins = append(a.ins, bpf.JumpIf{Cond: cond, Val: val})
}

func (a *assembler) jump(target string) {
	a.fixups = append(a.fixups, fixup{at: len(a.ins), onTrue: target, always: true})
	a.ins = append(a.ins, bpf.Jump{})
}

func (a *assembler) skip(from int, target string) (int, error) {
	if target == "" {
		return 0, nil
	}
	to, ok := a.labels[target]
	if !ok {
		return 0, fmt.Errorf("bpf: undefined label %q", target)
	}
	skip := to - from - 1
	if skip < 0 {
		return 0, fmt.Errorf("bpf: backward jump to %q", target)
	}
	return skip, nil
}

func (a *assembler) assemble() ([]bpf.Instruction, error) {
	for _, f := range a.fixups {
		st, err := a.skip(f.at, f.onTrue)
		if err != nil {
			return nil, err
		}
		if f.always {
			a.ins[f.at] = bpf.Jump{Skip: uint32(st)}
			continue
		}
		sf, err := a.skip(f.at, f.onFalse)
		if err != nil {
			return nil, err
		}
		if st > 0xFF || sf > 0xFF {
			return nil, fmt.Errorf("bpf: conditional jump at %d out of range", f.at)
		}
		ji := a.ins[f.at].(bpf.JumpIf)
		ji.SkipTrue, ji.SkipFalse = uint8(st), uint8(sf)
		a.ins[f.at] = ji
	}
	return a.ins, nil
}
