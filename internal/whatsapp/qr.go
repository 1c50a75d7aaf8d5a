package whatsapp

import (
	"fmt"
	"os"

	qrcode "github.com/skip2/go-qrcode"
)

const qrPNGPath = "whatsapp_qr.png"

// DisplayQR renders the pairing code as a PNG and prints its path so the
// operator can scan it from the phone.
func DisplayQR(code string) {
	err := qrcode.WriteFile(code, qrcode.Medium, 512, qrPNGPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not save QR code PNG: %v\n", err)
		return
	}
	fmt.Printf("QR code saved to %s\n", qrPNGPath)
}
