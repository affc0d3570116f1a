package lazytiff

import "fmt"

// UnknownPrefix is used as prefix for names of tags outside the TIFF 6.0
// baseline set.
const UnknownPrefix = "UnknownTag_"

// TagName returns the name the TIFF 6.0 specification gives tag, or
// UnknownPrefix followed by the tag in hex for tags outside the baseline
// set.
func TagName(tag uint16) string {
	if name, found := tagNames[tag]; found {
		return name
	}
	return fmt.Sprintf("%s0x%x", UnknownPrefix, tag)
}

// All tags listed in the TIFF 6.0 specification.
var tagNames = map[uint16]string{
	254:   "NewSubfileType",
	255:   "SubfileType",
	256:   "ImageWidth",
	257:   "ImageLength",
	258:   "BitsPerSample",
	259:   "Compression",
	262:   "PhotometricInterpretation",
	263:   "Threshholding",
	264:   "CellWidth",
	265:   "CellLength",
	266:   "FillOrder",
	269:   "DocumentName",
	270:   "ImageDescription",
	271:   "Make",
	272:   "Model",
	273:   "StripOffsets",
	274:   "Orientation",
	277:   "SamplesPerPixel",
	278:   "RowsPerStrip",
	279:   "StripByteCounts",
	280:   "MinSampleValue",
	281:   "MaxSampleValue",
	282:   "XResolution",
	283:   "YResolution",
	284:   "PlanarConfiguration",
	285:   "PageName",
	286:   "XPosition",
	287:   "YPosition",
	288:   "FreeOffsets",
	289:   "FreeByteCounts",
	290:   "GrayResponseUnit",
	291:   "GrayResponseCurve",
	292:   "T4Options",
	293:   "T6Options",
	296:   "ResolutionUnit",
	297:   "PageNumber",
	301:   "TransferFunction",
	305:   "Software",
	306:   "DateTime",
	315:   "Artist",
	316:   "HostComputer",
	317:   "Predictor",
	318:   "WhitePoint",
	319:   "PrimaryChromaticities",
	320:   "ColorMap",
	321:   "HalftoneHints",
	322:   "TileWidth",
	323:   "TileLength",
	324:   "TileOffsets",
	325:   "TileByteCounts",
	332:   "InkSet",
	333:   "InkNames",
	334:   "NumberOfInks",
	336:   "DotRange",
	337:   "TargetPrinter",
	338:   "ExtraSamples",
	339:   "SampleFormat",
	340:   "SMinSampleValue",
	341:   "SMaxSampleValue",
	342:   "TransferRange",
	512:   "JPEGProc",
	513:   "JPEGInterchangeFormat",
	514:   "JPEGInterchangeFormatLngth",
	515:   "JPEGRestartInterval",
	517:   "JPEGLosslessPredictors",
	518:   "JPEGPointTransforms",
	519:   "JPEGQTables",
	520:   "JPEGDCTables",
	521:   "JPEGACTables",
	529:   "YCbCrCoefficients",
	530:   "YCbCrSubsampling",
	531:   "YCbCrPositioning",
	532:   "ReferenceBlackWhite",
	33432: "Copyright",
}
