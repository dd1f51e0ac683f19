// Command edlinfo reads identifying attributes from a Qualcomm device in
// Emergency Download mode over the Sahara protocol.
//
//	edlinfo info --port /dev/ttyUSB0
//	edlinfo info --port COM5 --attrs serial-number,hardware-id,oem-pk-hash --trace edl.cbor
//	edlinfo info --replay edl.cbor
//	edlinfo trace dump edl.cbor
package main

var version = "dev"

func main() {
	Execute()
}
