package serial

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/ftl/atmodem/com"
)

var (
	ErrNoModemFound = errors.New("no modem found")
)

// Config of the serial port the modem is connected to.
type Config struct {
	PortName string
	BaudRate uint
}

// DefaultConfig returns the settings that most USB modems work with.
func DefaultConfig() Config {
	return Config{
		BaudRate: 115200,
	}
}

// Open the serial port and start an AT command channel on it.
func Open(config Config, opts ...com.Option) (*com.COM, error) {
	device, err := openSerial(config)
	if err != nil {
		return nil, err
	}

	return com.New(device, opts...), nil
}

// OpenWithTrace opens the serial port and traces all communication to the given writer.
func OpenWithTrace(config Config, tracer io.Writer, opts ...com.Option) (*com.COM, error) {
	device, err := openSerial(config)
	if err != nil {
		return nil, err
	}

	return com.NewWithTrace(device, tracer, opts...), nil
}

// readTimeout bounds every read, so closing the port never waits for the modem to send something.
const readTimeout = 100 * time.Millisecond

func openSerial(config Config) (io.ReadWriteCloser, error) {
	if config.PortName == "" {
		return nil, fmt.Errorf("no serial port selected")
	}
	baudRate := config.BaudRate
	if baudRate == 0 {
		baudRate = DefaultConfig().BaudRate
	}
	mode := &serial.Mode{
		BaudRate: int(baudRate),
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(config.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", config.PortName, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("cannot set the read timeout of %s: %w", config.PortName, err)
	}
	port.ResetInputBuffer()
	return port, nil
}

// Port describes a serial port of the system.
type Port struct {
	Name         string
	Product      string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
}

func (p Port) String() string {
	if !p.IsUSB {
		return p.Name
	}
	return fmt.Sprintf("%s (USB %s:%s %s)", p.Name, p.VID, p.PID, p.Product)
}

// IsModem reports whether the port belongs to a USB device of a known modem vendor.
func (p Port) IsModem() bool {
	if !p.IsUSB {
		return false
	}
	_, ok := modemVendors[strings.ToUpper(p.VID)]
	return ok
}

// modemVendors contains the USB vendor IDs of common cellular modem manufacturers.
var modemVendors = map[string]string{
	"2C7C": "Quectel",
	"1E0E": "SIMCom",
	"1199": "Sierra Wireless",
	"12D1": "Huawei",
	"1BC7": "Telit",
	"1546": "u-blox",
	"19D2": "ZTE",
}

// ListPorts returns all serial ports of the system.
func ListPorts() ([]Port, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	result := make([]Port, 0, len(details))
	for _, detail := range details {
		result = append(result, Port{
			Name:         detail.Name,
			Product:      detail.Product,
			IsUSB:        detail.IsUSB,
			VID:          detail.VID,
			PID:          detail.PID,
			SerialNumber: detail.SerialNumber,
		})
	}
	return result, nil
}

func findModemPort(ports []Port) (string, error) {
	for _, port := range ports {
		if port.IsModem() {
			return port.Name, nil
		}
	}
	return "", ErrNoModemFound
}
