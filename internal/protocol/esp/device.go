package esp

// Device ESP 总线上的设备标识（线上字节为低 4 位）
type Device byte

const (
	ConcealedDisplay            Device = 0x00
	RemoteAudio                 Device = 0x01
	Savvy                       Device = 0x02
	ThirdParty1                 Device = 0x03
	ThirdParty2                 Device = 0x04
	ThirdParty3                 Device = 0x05
	V1Connection                Device = 0x06
	GeneralBroadcast            Device = 0x08
	ValentineOneWithoutChecksum Device = 0x09
	ValentineOneWithChecksum    Device = 0x0A
	// ValentineOneLegacy is a pseudo id for pre-ESP units; it never appears on the wire.
	ValentineOneLegacy Device = 0x98
	UnknownDevice      Device = 0x99
)

// TechDisplayByte is the wire id of the Tech Display, which the bus treats as a concealed display.
const TechDisplayByte byte = 0x07

var deviceNames = map[Device]string{
	ConcealedDisplay:            "Concealed Display",
	RemoteAudio:                 "Remote Audio",
	Savvy:                       "SAVVY",
	ThirdParty1:                 "Third Party 1",
	ThirdParty2:                 "Third Party 2",
	ThirdParty3:                 "Third Party 3",
	V1Connection:                "V1connection",
	GeneralBroadcast:            "General Broadcast",
	ValentineOneWithoutChecksum: "Valentine One without checksum",
	ValentineOneWithChecksum:    "Valentine One with checksum",
	ValentineOneLegacy:          "Valentine One Legacy",
	UnknownDevice:               "Unknown Device",
}

// DeviceFromByte 将线上字节映射为设备标识；未定义的字节返回 UnknownDevice
func DeviceFromByte(b byte) Device {
	if b == TechDisplayByte {
		return ConcealedDisplay
	}
	d := Device(b)
	if _, ok := deviceNames[d]; !ok {
		return UnknownDevice
	}
	return d
}

// Byte returns the canonical wire byte.
func (d Device) Byte() byte { return byte(d) }

// String returns the display name.
func (d Device) String() string {
	if n, ok := deviceNames[d]; ok {
		return n
	}
	return deviceNames[UnknownDevice]
}

// HasChecksum 该设备发出的包是否携带尾部校验字节
func (d Device) HasChecksum() bool {
	switch d {
	case ValentineOneWithoutChecksum, ValentineOneLegacy:
		return false
	}
	return true
}

// IsValentineOne reports whether d is any flavour of the detector itself.
func (d Device) IsValentineOne() bool {
	switch d {
	case ValentineOneWithoutChecksum, ValentineOneWithChecksum, ValentineOneLegacy:
		return true
	}
	return false
}

// Devices returns every declared device in wire-byte order, sentinel last.
func Devices() []Device {
	return []Device{
		ConcealedDisplay, RemoteAudio, Savvy, ThirdParty1, ThirdParty2, ThirdParty3,
		V1Connection, GeneralBroadcast, ValentineOneWithoutChecksum, ValentineOneWithChecksum,
		ValentineOneLegacy, UnknownDevice,
	}
}

// MarshalText encodes the display name.
func (d Device) MarshalText() ([]byte, error) { return []byte(d.String()), nil }
