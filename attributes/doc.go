// Package attributes maps device attributes to Sahara client commands.
//
// In command mode the boot ROM answers Execute requests identified by a
// numeric client command. Which number yields which attribute differs across
// firmware generations, so the mapping lives in a YAML table instead of the
// code. A default table is embedded; a different one can be loaded from disk.
//
// # Table Format
//
//	version: 1
//	attributes:
//	  - kind: serial-number
//	    code: 0x01
//	    encoding: uint
//	    width: 4
//	  - kind: command-id-list
//	    code: 0x08
//	    encoding: uint32-list
//	    min_version: 2
//
// Encodings:
//   - uint: little-endian unsigned integer of width bytes (1-8)
//   - bytes: opaque payload of at least width bytes
//   - uint32-list: sequence of little-endian uint32 values
//
// min_version and max_version restrict an entry to a range of negotiated
// protocol versions. Zero means unbounded.
//
// # Usage
//
//	table := attributes.Default()
//	entry, err := table.Lookup(attributes.KindSerialNumber, info.Version)
//	if err != nil {
//	    // not available on this device generation
//	}
//	v, err := entry.Decode(payload)
//	fmt.Println(attributes.SerialNumber(v.Uint))
//
// Load a custom table:
//
//	table, err := attributes.Parse("codes.yaml")
package attributes
