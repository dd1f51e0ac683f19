package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/moffa90/go-sahara/attributes"
	"github.com/moffa90/go-sahara/sahara"
)

func formatValue(v sahara.AttributeValue) string {
	if !v.Supported {
		return "unsupported: " + v.Reason
	}

	switch v.Kind {
	case attributes.KindSerialNumber:
		return attributes.SerialNumber(v.Value).String()
	case attributes.KindHardwareID:
		return attributes.HardwareID(v.Value).String()
	case attributes.KindOEMPKHash:
		hashes := attributes.PKHashes(v.Raw)
		lines := make([]string, len(hashes))
		for i, h := range hashes {
			lines[i] = hex.EncodeToString(h)
		}
		return strings.Join(lines, "\n")
	}

	switch {
	case v.List != nil:
		words := make([]string, len(v.List))
		for i, w := range v.List {
			words[i] = fmt.Sprintf("0x%02X", w)
		}
		return strings.Join(words, " ")
	case len(v.Raw) <= 8:
		return fmt.Sprintf("0x%08X", v.Value)
	default:
		return hex.EncodeToString(v.Raw)
	}
}
