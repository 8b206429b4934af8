package params

// Device types reported by the cloud.
const (
	DeviceTypeDoorbell  = 7
	DeviceTypeIndoorCam = 30
)

// Attribute names used by the camera facade. Every family that supports the
// matching operation binds these names.
const (
	AttrOpenDevice                 = "open_device"
	AttrStatusLED                  = "status_led"
	AttrMotionDetectionSwitch      = "motion_detection_switch"
	AttrMotionDetectionType        = "motion_detection_type"
	AttrMotionDetectionSensitivity = "motion_detection_sensitivity"
	AttrSoundDetectionSwitch       = "sound_detection_switch"
	AttrSoundDetectionType         = "sound_detection_type"
	AttrSoundDetectionSensitivity  = "sound_detection_sensitivity"
	AttrSnoozedAt                  = "snoozed_at"
	AttrSnoozeMode                 = "snooze_mode"
)

// Snooze descriptor sub-fields.
const (
	SnoozeAccountID = "account_id"
	SnoozeTime      = "snooze_time"
)

// snoozeMode is shared by every family that supports snoozing notifications.
var snoozeMode = Base64ObjectOf(
	Sub(SnoozeAccountID, "account_id", Text()),
	Sub(SnoozeTime, "snooze_time", Int()),
)

// Default is the generic schema used for device types without a dedicated
// family. It may bind codes a given device does not implement.
var Default = NewSchema(FamilyDefault, nil,
	Bind(AttrOpenDevice, 2001, Switch()),
	Bind("night_visual", 2002, Int()),
	Bind("volume", 2003, Int()),
	Bind("detect_mode", 2004, Int()),
	Bind("detect_motion_sensitive", 2005, Int()),
	Bind("detect_zone", 2006, JSON()),
	Bind("un_detect_zone", 2007, JSON()),
	Bind("sdcard", 2010, Int()),
	Bind("chime_state", 2015, Int()),
	Bind("ringing_volume", 2022, Int()),
	Bind("detect_exposure", 2023, Int()),
	Bind("detect_switch", 2027, Switch()),
	Bind("detect_scenario", 2028, Int()),
	Bind("doorbell_hdr", 2029, Switch()),
	Bind("doorbell_ir_mode", 2030, Int()),
	Bind("doorbell_video_quality", 2031, Int()),
	Bind("doorbell_brightness", 2032, Int()),
	Bind("doorbell_distortion", 2033, Int()),
	Bind("doorbell_record_quality", 2034, Int()),
	Bind("doorbell_motion_notification", 2035, JSON()),
	Bind("doorbell_notification_open", 2036, JSON()),
	Bind(AttrSnoozedAt, 2037, Int()),
	Bind("doorbell_notification_jump_mode", 2038, Int()),
	Bind("doorbell_led_night_mode", 2039, Int()),
	Bind("doorbell_ring_record", 2040, Int()),
	Bind("doorbell_motion_advance_option", 2041, JSON()),
	Bind("doorbell_audio_recode", 2042, Int()),
	Bind(AttrSnoozeMode, 1271, snoozeMode),
	Bind("watermark_mode", 1214, Enum(WatermarkModes)),
	Bind("camera_upgrade_now", 1133, Int()),
	Bind("device_upgrade_now", 1134, Int()),
	Bind("push_msg_mode", 1252, Int()),
)

// IndoorCam is the schema for indoor cameras.
var IndoorCam = NewSchema(FamilyIndoorCam, []int{DeviceTypeIndoorCam},
	Bind(AttrStatusLED, 6014, Switch()),
	Bind(AttrOpenDevice, 2001, Switch()),

	Bind(AttrMotionDetectionSwitch, 6040, Switch()),
	Bind(AttrMotionDetectionType, 6045, Enum(MotionDetectionModes)),
	Bind(AttrMotionDetectionSensitivity, 6041, Enum(DetectionSensitivities)),

	Bind(AttrSoundDetectionSwitch, 6043, Switch()),
	Bind(AttrSoundDetectionSensitivity, 6044, Enum(DetectionSensitivities)),
	Bind(AttrSoundDetectionType, 6046, Enum(SoundDetectionModes)),

	Bind("recording_quality", 2034, Enum(RecordingQualities)),
	Bind("stream_quality", 2031, Enum(StreamQualities)),

	Bind("microphone_switch", 1240, Switch()),
	Bind("audio_recording", 6012, Switch()),
	Bind("speaker_switch", 1241, Switch()),
	Bind("speaker_volume", 1230, Int()),

	Bind("continuous_recording_switch", 6010, Switch()),
	Bind("continuous_recording_type", 6011, Enum(ContinuousRecordingTypes)),

	Bind(AttrSnoozedAt, 2037, Int()),
	Bind(AttrSnoozeMode, 1271, snoozeMode),
)

// Doorbell notification settings sub-fields.
const (
	NotificationDoorbellRing      = "notification_doorbell_ring"
	NotificationMotionDetect      = "notification_motion_detect"
	NotificationContentExtension  = "notification_content_extension"
	doorbellHomebaseVolumeMaximum = 26
	batteryLevelMaximum           = 100
)

// Doorbell is the schema for battery doorbells.
var Doorbell = NewSchema(FamilyDoorbell, []int{DeviceTypeDoorbell},
	Bind("battery_level", 1101, IntRange(0, batteryLevelMaximum)),

	Bind(AttrOpenDevice, 99904, Switch()),
	Bind(AttrStatusLED, 1716, Switch()),
	Bind("auto_night_vision", 1013, Switch()),
	Bind("watermark", 1214, Enum(DoorbellWatermarks)),

	Bind(AttrMotionDetectionSwitch, 1011, Switch()),
	Bind("activity_zones", 1204, JSON()),
	Bind(AttrMotionDetectionType, 1252, Enum(DoorbellMotionDetectionModes)),
	Bind(AttrMotionDetectionSensitivity, 1276, Int()),

	Bind("power_manager_mode", 1246, Enum(PowerManagerModes)),

	Bind("custom_recording_clip_length", 1249, Int()),
	Bind("custom_recording_retrigger_interval", 1250, Int()),
	Bind("custom_recording_end_clip_early", 1251, FlippedSwitch()),

	Bind("wdr_enabled", 1704, Switch()),
	Bind("stream_quality", 1705, Enum(DoorbellStreamQualities)),

	Bind("audio_recording", 1288, FlippedSwitch()),
	Bind("doorbell_audio_volume", 1230, Int()),
	Bind("doorbell_ringtone_volume", 1708, Int()),

	Bind("notification_settings", 1710, ObjectOf(
		Sub(NotificationDoorbellRing, "ring", Switch()),
		Sub(NotificationMotionDetect, "motion", Switch()),
		Sub(NotificationContentExtension, "style", Enum(NotificationExtensions)),
	)),
	Bind("opening_notif_jump_to", 2038, Enum(NotificationJumpTargets)),

	Bind("homebase_alert", 1702, Switch()),
	Bind("homebase_ringtone_volume", 1717, IntRange(0, doorbellHomebaseVolumeMaximum)),
	Bind("homebase_tone", 1718, Int()),

	Bind(AttrSnoozedAt, 2037, Int()),
	Bind(AttrSnoozeMode, 1271, snoozeMode),
)

// byDeviceType indexes every dedicated family by device type.
var byDeviceType = indexFamilies(IndoorCam, Doorbell)

func indexFamilies(schemas ...*Schema) map[int]*Schema {
	idx := make(map[int]*Schema)
	for _, s := range schemas {
		for _, t := range s.deviceTypes {
			idx[t] = s
		}
	}
	return idx
}

// Resolve returns the schema for a device type. Unknown types resolve to
// Default; this never fails.
func Resolve(deviceType int) *Schema {
	if s, ok := byDeviceType[deviceType]; ok {
		return s
	}
	return Default
}

// Families returns every schema, Default first.
func Families() []*Schema {
	return []*Schema{Default, IndoorCam, Doorbell}
}
