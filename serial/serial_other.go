//go:build !linux

package serial

// FindModemPortName looks for a port that belongs to the USB device of a known modem manufacturer.
func FindModemPortName() (string, error) {
	ports, err := ListPorts()
	if err != nil {
		return "", err
	}
	return findModemPort(ports)
}
