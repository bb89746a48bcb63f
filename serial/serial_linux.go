//go:build linux

package serial

import (
	"strings"

	"github.com/hedhyw/Go-Serial-Detector/pkg/v1/serialdet"
)

var modemKeywords = []string{"modem", "gsm", "lte", "quectel", "simcom", "sierra", "huawei", "telit", "u-blox"}

// FindModemPortName looks for the device description of a cellular modem first and falls back to
// the USB vendor IDs of known modem manufacturers.
func FindModemPortName() (string, error) {
	devices, err := serialdet.List()
	if err != nil {
		return "", err
	}

	for _, device := range devices {
		description := strings.ToLower(device.Description())
		for _, keyword := range modemKeywords {
			if strings.Contains(description, keyword) {
				return device.Path(), nil
			}
		}
	}

	ports, err := ListPorts()
	if err != nil {
		return "", err
	}
	return findModemPort(ports)
}
