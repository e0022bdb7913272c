package drda

// DDM/DRDA code points named in the DRDA Architecture reference. Every
// packer and parser in this module references this table, so the numeric
// values stay consistent between what the client sends and what it
// expects back.
const (
	cpEXCSAT    = 0x1041
	cpACCSEC    = 0x106D
	cpSECCHK    = 0x106E
	cpEXCSATRD  = 0x1443
	cpACCSECRD  = 0x14AC
	cpSECCHKRM  = 0x1219
	cpMGRLVLLS  = 0x1404
	cpAGENT     = 0x1403
	cpSECMGR    = 0x1440
	cpCMNTCPIP  = 0x1474
	cpSQLAM     = 0x2407
	cpRDB       = 0x240F
	cpUNICODEMGR = 0x1446
	cpCCSIDMGR  = 0x119C
	cpEXTNAM    = 0x115E
	cpSRVNAM    = 0x116D
	cpSRVRLSLV  = 0x115A
	cpSRVCLSNM  = 0x1147
	cpSECMEC    = 0x11A2
	cpSECTKN    = 0x11DC
	cpUSRID     = 0x11A0
	cpPASSWORD  = 0x11A1
	cpRDBNAM    = 0x2110
	cpACCRDB    = 0x2001
	cpACCRDBRM  = 0x2201
	cpRDBACCCL  = 0x210F
	cpPRDID     = 0x112E
	cpTYPDEFNAM = 0x002F
	cpTYPDEFOVR = 0x0035
	cpCRRTKN    = 0x2135
	cpPKGNAMCSN = 0x2113
	cpRDBNFNRM  = 0x2211
	cpRDBCMM    = 0x200E
	cpPRPSQLSTT = 0x2105
	cpDSCSQLSTT = 0x2104
	cpEXCSQLSTT = 0x200A
	cpEXCSQLIMM = 0x2007
	cpEXCSQLSET = 0x224E
	cpOPNQRY    = 0x200F
	cpCNTQRY    = 0x2106
	cpRDBCMTOK  = 0x2109
	cpRTNSQLDA  = 0x2116
	cpTYPSQLDA  = 0x2117
	cpQRYBLKSZ  = 0x2114
	cpMAXBLKEXT = 0x2141
	cpQRYCLSIMP = 0x215D
	cpDYNDTAFMT = 0x2170
	cpQRYINSID  = 0x215B
	cpRTNEXTDTA = 0x2152
	cpFREPRVREF = 0x2150
	cpSQLSTT    = 0x2414
	cpSQLATTR   = 0x2415
	cpSQLDTA    = 0x2412
	cpFDODSC    = 0x2413
	cpFDODTA    = 0x2416
	cpSQLCARD   = 0x2408
	cpSQLDARD   = 0x2411
	cpQRYDSC    = 0x241A
	cpQRYDTA    = 0x241B
	cpSQLERRRM  = 0x2206
	cpOPNQRYRM  = 0x2205
	cpENDQRYRM  = 0x2204
	cpSRVDGN    = 0x1153
)

// Security mechanism codes (SECMEC), values per the DRDA architecture.
const (
	secmecDCESEC      = 1
	secmecUSRIDPWD    = 3
	secmecUSRIDONL    = 4
	secmecUSRIDNWPWD  = 5
	secmecUSRSBSPWD   = 6
	secmecUSRENCPWD   = 7
	secmecUSRSSBPWD   = 8
	secmecEUSRIDPWD   = 9
	secmecEUSRIDNWPWD = 10
)

// DRDA wire type codes, as transmitted in QRYDSC triplets. Nullable variants
// are the odd-numbered code one above their non-nullable counterpart.
const (
	drdaTypeInteger     = 0x02
	drdaTypeNInteger    = 0x03
	drdaTypeSmall       = 0x04
	drdaTypeNSmall      = 0x05
	drdaType1ByteInt    = 0x06
	drdaTypeN1ByteInt   = 0x07
	drdaTypeFloat16     = 0x08
	drdaTypeNFloat16    = 0x09
	drdaTypeFloat8      = 0x0A
	drdaTypeNFloat8     = 0x0B
	drdaTypeFloat4      = 0x0C
	drdaTypeNFloat4     = 0x0D
	drdaTypeDecimal     = 0x0E
	drdaTypeNDecimal    = 0x0F
	drdaTypeZDecimal    = 0x10
	drdaTypeNZDecimal   = 0x11
	drdaTypeNumericChar = 0x12
	drdaTypeNNumericChar = 0x13
	drdaTypeRSetLoc     = 0x14
	drdaTypeNRSetLoc    = 0x15
	drdaTypeInteger8    = 0x16
	drdaTypeNInteger8   = 0x17
	drdaTypeLobLoc      = 0x18
	drdaTypeNLobLoc     = 0x19
	drdaTypeCLobLoc     = 0x1A
	drdaTypeNCLobLoc    = 0x1B
	drdaTypeDBCSCLobLoc = 0x1C
	drdaTypeNDBCSCLobLoc = 0x1D
	drdaTypeRowID       = 0x1E
	drdaTypeNRowID      = 0x1F
	drdaTypeDate        = 0x20
	drdaTypeNDate       = 0x21
	drdaTypeTime        = 0x22
	drdaTypeNTime       = 0x23
	drdaTypeTimestamp   = 0x24
	drdaTypeNTimestamp  = 0x25
	drdaTypeFixByte     = 0x26
	drdaTypeNFixByte    = 0x27
	drdaTypeVarByte     = 0x28
	drdaTypeNVarByte    = 0x29
	drdaTypeLongVarByte = 0x2A
	drdaTypeNLongVarByte = 0x2B
	drdaTypeNTermByte   = 0x2C
	drdaTypeNNTermByte  = 0x2D
	drdaTypeCStr        = 0x2E
	drdaTypeNCStr       = 0x2F
	drdaTypeChar        = 0x30
	drdaTypeNChar       = 0x31
	drdaTypeVarchar     = 0x32
	drdaTypeNVarchar    = 0x33
	drdaTypeLong        = 0x34
	drdaTypeNLong       = 0x35
	drdaTypeGraphic     = 0x36
	drdaTypeNGraphic    = 0x37
	drdaTypeVarGraph    = 0x38
	drdaTypeNVarGraph   = 0x39
	drdaTypeLongGraph   = 0x3A
	drdaTypeNLongGraph  = 0x3B
	drdaTypeMix         = 0x3C
	drdaTypeNMix        = 0x3D
	drdaTypeVarMix       = 0x3E
	drdaTypeNVarMix      = 0x3F
	drdaTypeLongMix      = 0x40
	drdaTypeNLongMix     = 0x41
	drdaTypeCStrMix      = 0x42
	drdaTypeNCStrMix     = 0x43
	drdaTypePsclByte     = 0x44
	drdaTypeNPsclByte    = 0x45
	drdaTypeLStr         = 0x46
	drdaTypeNLStr        = 0x47
	drdaTypeLStrMix      = 0x48
	drdaTypeNLStrMix     = 0x49
	drdaTypeSDatalink    = 0x4C
	drdaTypeNSDatalink   = 0x4D
	drdaTypeMDatalink    = 0x4E
	drdaTypeNMDatalink   = 0x4F
	drdaTypeBoolean      = 0xBE
	drdaTypeNBoolean     = 0xBF
)

// DB2 SQLTYPE codes, as reported in SQLDARD column descriptors and used to
// select FDODSC/FDODTA encoding for parameters.
const (
	db2SQLTypeDate        = 384
	db2SQLTypeNDate       = 385
	db2SQLTypeTime        = 388
	db2SQLTypeNTime       = 389
	db2SQLTypeTimestamp   = 392
	db2SQLTypeNTimestamp  = 393
	db2SQLTypeDatalink    = 396
	db2SQLTypeNDatalink   = 397
	db2SQLTypeBlob        = 404
	db2SQLTypeNBlob       = 405
	db2SQLTypeClob        = 408
	db2SQLTypeNClob       = 409
	db2SQLTypeDBClob      = 412
	db2SQLTypeNDBClob     = 413
	db2SQLTypeVarchar     = 448
	db2SQLTypeNVarchar    = 449
	db2SQLTypeChar        = 452
	db2SQLTypeNChar       = 453
	db2SQLTypeLong        = 456
	db2SQLTypeNLong       = 457
	db2SQLTypeCStr        = 460
	db2SQLTypeNCStr       = 461
	db2SQLTypeVarGraph    = 464
	db2SQLTypeNVarGraph   = 465
	db2SQLTypeGraphic     = 468
	db2SQLTypeNGraphic    = 469
	db2SQLTypeLongGraph   = 472
	db2SQLTypeNLongGraph  = 473
	db2SQLTypeLStr        = 476
	db2SQLTypeNLStr       = 477
	db2SQLTypeFloat       = 480
	db2SQLTypeNFloat      = 481
	db2SQLTypeDecimal     = 484
	db2SQLTypeNDecimal    = 485
	db2SQLTypeZoned       = 488
	db2SQLTypeNZoned      = 489
	db2SQLTypeBigint      = 492
	db2SQLTypeNBigint     = 493
	db2SQLTypeInteger     = 496
	db2SQLTypeNInteger    = 497
	db2SQLTypeSmall       = 500
	db2SQLTypeNSmall      = 501
	db2SQLTypeNumeric     = 504
	db2SQLTypeNNumeric    = 505
	db2SQLTypeRowID       = 904
	db2SQLTypeNRowID      = 905
	db2SQLTypeBlobLocator  = 960
	db2SQLTypeNBlobLocator = 961
	db2SQLTypeClobLocator  = 964
	db2SQLTypeNClobLocator = 965
	db2SQLTypeDBClobLocator  = 968
	db2SQLTypeNDBClobLocator = 969
	db2SQLTypeBoolean     = 2436
	db2SQLTypeNBoolean    = 2437
)
