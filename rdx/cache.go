package rdx

// Profile and event caching

func CacheProfile(userID string, profileJSON string) error {
	return RdxSet("profile:"+userID, profileJSON)
}

func GetCachedProfile(userID string) (string, error) {
	return RdxGet("profile:" + userID)
}

func InvalidateCachedProfile(userID string) error {
	_, err := RdxDel("profile:" + userID)
	return err
}

func CacheEvent(eventID string, eventJSON string) error {
	return RdxSet("event:"+eventID, eventJSON)
}

func GetCachedEvent(eventID string) (string, error) {
	return RdxGet("event:" + eventID)
}

func InvalidateCachedEvent(eventID string) error {
	_, err := RdxDel("event:" + eventID)
	return err
}
