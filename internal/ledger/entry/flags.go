package entry

// AccountRoot flags
const (
	LsfGlobalFreeze   uint32 = 0x00400000
	LsfNoFreeze       uint32 = 0x00200000
	LsfDefaultRipple  uint32 = 0x00800000
	LsfDepositAuth    uint32 = 0x01000000
	LsfAMM            uint32 = 0x02000000
	LsfRequireAuth    uint32 = 0x00040000
	LsfDisallowXRP    uint32 = 0x00080000
	LsfDisableMaster  uint32 = 0x00100000
)

// RippleState flags
const (
	LsfLowReserve   uint32 = 0x00010000
	LsfHighReserve  uint32 = 0x00020000
	LsfLowAuth      uint32 = 0x00040000
	LsfHighAuth     uint32 = 0x00080000
	LsfLowNoRipple  uint32 = 0x00100000
	LsfHighNoRipple uint32 = 0x00200000
	LsfLowFreeze    uint32 = 0x00400000
	LsfHighFreeze   uint32 = 0x00800000
)
