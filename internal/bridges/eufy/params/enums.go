package params

// Indoor camera enumerations.
var (
	MotionPerson               = EnumValue{Set: "motion_detection_mode", Name: "PERSON", Ordinal: 1}
	MotionPet                  = EnumValue{Set: "motion_detection_mode", Name: "PET", Ordinal: 2}
	MotionPersonAndPet         = EnumValue{Set: "motion_detection_mode", Name: "PERSON_AND_PET", Ordinal: 3}
	MotionOther                = EnumValue{Set: "motion_detection_mode", Name: "OTHER", Ordinal: 4}
	MotionPersonAndOther       = EnumValue{Set: "motion_detection_mode", Name: "PERSON_AND_OTHER", Ordinal: 5}
	MotionPetAndOther          = EnumValue{Set: "motion_detection_mode", Name: "PET_AND_OTHER", Ordinal: 6}
	MotionPersonAndPetAndOther = EnumValue{Set: "motion_detection_mode", Name: "PERSON_AND_PET_AND_OTHER", Ordinal: 7}

	MotionDetectionModes = NewEnumSet("motion_detection_mode",
		MotionPerson, MotionPet, MotionPersonAndPet, MotionOther,
		MotionPersonAndOther, MotionPetAndOther, MotionPersonAndPetAndOther)

	SensitivityLowest  = EnumValue{Set: "detection_sensitivity", Name: "LOWEST", Ordinal: 1}
	SensitivityLow     = EnumValue{Set: "detection_sensitivity", Name: "LOW", Ordinal: 2}
	SensitivityMedium  = EnumValue{Set: "detection_sensitivity", Name: "MEDIUM", Ordinal: 3}
	SensitivityHigh    = EnumValue{Set: "detection_sensitivity", Name: "HIGH", Ordinal: 4}
	SensitivityHighest = EnumValue{Set: "detection_sensitivity", Name: "HIGHEST", Ordinal: 5}

	DetectionSensitivities = NewEnumSet("detection_sensitivity",
		SensitivityLowest, SensitivityLow, SensitivityMedium, SensitivityHigh, SensitivityHighest)

	SoundAll    = EnumValue{Set: "sound_detection_mode", Name: "ALL_SOUND", Ordinal: 2}
	SoundCrying = EnumValue{Set: "sound_detection_mode", Name: "CRYING", Ordinal: 1}

	SoundDetectionModes = NewEnumSet("sound_detection_mode", SoundAll, SoundCrying)

	// RecordingQuality1080P is sent as the JSON array "[2]": the vendor table
	// declares it as a one-element tuple. Decoding accepts "[2]" and "2".
	RecordingQuality1080P = EnumValue{Set: "recording_quality", Name: "TEN_EIGHTY_P", Ordinal: 2, wire: "[2]"}
	RecordingQuality2K    = EnumValue{Set: "recording_quality", Name: "TWO_K", Ordinal: 3}

	RecordingQualities = NewEnumSet("recording_quality", RecordingQuality1080P, RecordingQuality2K)

	StreamAuto   = EnumValue{Set: "stream_quality", Name: "AUTO", Ordinal: 0}
	StreamHigh   = EnumValue{Set: "stream_quality", Name: "HIGH", Ordinal: 3}
	StreamMedium = EnumValue{Set: "stream_quality", Name: "MEDIUM", Ordinal: 2}
	StreamLow    = EnumValue{Set: "stream_quality", Name: "LOW", Ordinal: 1}

	StreamQualities = NewEnumSet("stream_quality", StreamAuto, StreamHigh, StreamMedium, StreamLow)

	ContinuousRecording247      = EnumValue{Set: "continuous_recording_type", Name: "TWENTY_FOUR_SEVEN", Ordinal: 0}
	ContinuousRecordingSchedule = EnumValue{Set: "continuous_recording_type", Name: "SCHEDULE", Ordinal: 1}

	ContinuousRecordingTypes = NewEnumSet("continuous_recording_type",
		ContinuousRecording247, ContinuousRecordingSchedule)

	// Both time formats share ordinal 0 on the wire; decoding 0 always
	// yields TimeFormat24H. The vendor lists this enumeration for indoor
	// cameras but no known parameter code carries it, so no family binds
	// it; it only records the lossy shared ordinal.
	TimeFormat24H = EnumValue{Set: "time_format", Name: "TWENTY_FOUR_HOURS", Ordinal: 0}
	TimeFormat12H = EnumValue{Set: "time_format", Name: "TWELVE_HOURS", Ordinal: 0}

	TimeFormats = NewEnumSet("time_format", TimeFormat24H, TimeFormat12H)
)

// Doorbell enumerations.
var (
	DoorbellWatermarkOff = EnumValue{Set: "doorbell_watermark", Name: "OFF", Ordinal: 1}
	DoorbellWatermarkOn  = EnumValue{Set: "doorbell_watermark", Name: "ON", Ordinal: 2}

	DoorbellWatermarks = NewEnumSet("doorbell_watermark", DoorbellWatermarkOff, DoorbellWatermarkOn)

	DoorbellMotionHumans = EnumValue{Set: "doorbell_motion_detection_mode", Name: "HUMANS_ONLY", Ordinal: 0}
	DoorbellMotionAll    = EnumValue{Set: "doorbell_motion_detection_mode", Name: "ALL_MOTION", Ordinal: 2}

	DoorbellMotionDetectionModes = NewEnumSet("doorbell_motion_detection_mode",
		DoorbellMotionHumans, DoorbellMotionAll)

	PowerOptimalSurveillance = EnumValue{Set: "power_manager_mode", Name: "OPTIMAL_SURVEILLANCE", Ordinal: 1}
	PowerCustomizeRecording  = EnumValue{Set: "power_manager_mode", Name: "CUSTOMIZE_RECORDING", Ordinal: 2}
	PowerOptimalBatteryLife  = EnumValue{Set: "power_manager_mode", Name: "OPTIMAL_BATTERY_LIFE", Ordinal: 3}

	PowerManagerModes = NewEnumSet("power_manager_mode",
		PowerOptimalSurveillance, PowerCustomizeRecording, PowerOptimalBatteryLife)

	// Ordinals 0-3 apply with low encoding, 5-8 with high encoding.
	DoorbellStreamAuto             = EnumValue{Set: "doorbell_stream_quality", Name: "AUTO", Ordinal: 0}
	DoorbellStreamLow              = EnumValue{Set: "doorbell_stream_quality", Name: "LOW", Ordinal: 1}
	DoorbellStreamMedium           = EnumValue{Set: "doorbell_stream_quality", Name: "MEDIUM", Ordinal: 2}
	DoorbellStreamHigh             = EnumValue{Set: "doorbell_stream_quality", Name: "HIGH", Ordinal: 3}
	DoorbellStreamAutoHighEncoding = EnumValue{Set: "doorbell_stream_quality", Name: "AUTO_HIGH_ENCODING", Ordinal: 5}
	DoorbellStreamLowHighEncoding  = EnumValue{Set: "doorbell_stream_quality", Name: "LOW_HIGH_ENCODING", Ordinal: 6}
	DoorbellStreamMedHighEncoding  = EnumValue{Set: "doorbell_stream_quality", Name: "MEDIUM_HIGH_ENCODING", Ordinal: 7}
	DoorbellStreamHighHighEncoding = EnumValue{Set: "doorbell_stream_quality", Name: "HIGH_HIGH_ENCODING", Ordinal: 8}

	DoorbellStreamQualities = NewEnumSet("doorbell_stream_quality",
		DoorbellStreamAuto, DoorbellStreamLow, DoorbellStreamMedium, DoorbellStreamHigh,
		DoorbellStreamAutoHighEncoding, DoorbellStreamLowHighEncoding,
		DoorbellStreamMedHighEncoding, DoorbellStreamHighHighEncoding)

	NotificationMostEfficient    = EnumValue{Set: "notification_extension", Name: "MOST_EFFICIENT", Ordinal: 1}
	NotificationFullEffect       = EnumValue{Set: "notification_extension", Name: "FULL_EFFECT", Ordinal: 3}
	NotificationIncludeThumbnail = EnumValue{Set: "notification_extension", Name: "INCLUDE_THUMBNAIL", Ordinal: 2}

	NotificationExtensions = NewEnumSet("notification_extension",
		NotificationMostEfficient, NotificationFullEffect, NotificationIncludeThumbnail)

	JumpToHistoryEvent = EnumValue{Set: "notification_jump_target", Name: "RELATED_HISTORY_EVENT", Ordinal: 1}
	JumpToLiveView     = EnumValue{Set: "notification_jump_target", Name: "LIVE_VIEW", Ordinal: 2}

	NotificationJumpTargets = NewEnumSet("notification_jump_target", JumpToHistoryEvent, JumpToLiveView)
)

// Generic enumerations.
var (
	WatermarkHide = EnumValue{Set: "watermark_mode", Name: "HIDE", Ordinal: 1}
	WatermarkShow = EnumValue{Set: "watermark_mode", Name: "SHOW", Ordinal: 2}

	WatermarkModes = NewEnumSet("watermark_mode", WatermarkHide, WatermarkShow)
)
