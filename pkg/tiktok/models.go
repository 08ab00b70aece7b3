package tiktok

// UserProfile is a fully resolved user profile
type UserProfile struct {
	ID            string `json:"id"`
	SecUID        string `json:"secUid"`
	Username      string `json:"username"`
	Nickname      string `json:"nickname"`
	Signature     string `json:"signature"`
	Verified      bool   `json:"verified"`
	FollowerCount int    `json:"followerCount"`
	PostCount     int    `json:"postCount"`
	AvatarLarge   string `json:"avatarLarge"`
	AvatarMedium  string `json:"avatarMedium"`
	AvatarThumb   string `json:"avatarThumb"`
}

// UserHit is a search result entry, a lighter shape than UserProfile
type UserHit struct {
	ID            string `json:"id"`
	SecUID        string `json:"secUid"`
	Username      string `json:"username"`
	Nickname      string `json:"nickname"`
	Signature     string `json:"signature"`
	Verified      bool   `json:"verified"`
	FollowerCount int    `json:"followerCount"`
	AvatarThumb   string `json:"avatarThumb"`
}

// Post is a single published post. Comments are collected separately so
// collection stays independent and resumable.
type Post struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	Cover        string `json:"cover"`
	CreateTime   int64  `json:"createTime"`
	DiggCount    int    `json:"diggCount"`
	ShareCount   int    `json:"shareCount"`
	PlayCount    int    `json:"playCount"`
	CommentCount int    `json:"commentCount"`
}

// Comment is a single comment on a post
type Comment struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	CreateTime   int64  `json:"createTime"`
	DiggCount    int    `json:"diggCount"`
	Language     string `json:"language"`
	AuthorName   string `json:"authorName"`
	AuthorAvatar string `json:"authorAvatar"`
}

// statusEnvelope is the status field every upstream payload embeds.
// A non-zero status_code is a logical failure even on HTTP 200.
type statusEnvelope struct {
	StatusCode int `json:"status_code"`
}

// avatarURLs is the upstream's url_list wrapper around image variants
type avatarURLs struct {
	URLList []string `json:"url_list"`
}

func (a avatarURLs) first() string {
	if len(a.URLList) == 0 {
		return ""
	}
	return a.URLList[0]
}

// userDetailResponse is the upstream shape of the user detail endpoint
type userDetailResponse struct {
	UserInfo struct {
		User struct {
			ID           string `json:"id"`
			SecUID       string `json:"secUid"`
			UniqueID     string `json:"uniqueId"`
			Nickname     string `json:"nickname"`
			Signature    string `json:"signature"`
			Verified     bool   `json:"verified"`
			AvatarLarger string `json:"avatarLarger"`
			AvatarMedium string `json:"avatarMedium"`
			AvatarThumb  string `json:"avatarThumb"`
		} `json:"user"`
		Stats struct {
			FollowerCount int `json:"followerCount"`
			VideoCount    int `json:"videoCount"`
		} `json:"stats"`
	} `json:"userInfo"`
}

// userSearchResponse is the upstream shape of the user search endpoint
type userSearchResponse struct {
	UserList []struct {
		UserInfo struct {
			UID                    string     `json:"uid"`
			SecUID                 string     `json:"sec_uid"`
			UniqueID               string     `json:"unique_id"`
			Nickname               string     `json:"nickname"`
			Signature              string     `json:"signature"`
			EnterpriseVerifyReason string     `json:"enterprise_verify_reason"`
			CustomVerify           string     `json:"custom_verify"`
			FollowerCount          int        `json:"follower_count"`
			AvatarThumb            avatarURLs `json:"avatar_thumb"`
		} `json:"user_info"`
	} `json:"user_list"`
}

// postListResponse is the upstream shape of the post listing endpoint
type postListResponse struct {
	ItemList []struct {
		ID         string `json:"id"`
		Desc       string `json:"desc"`
		CreateTime int64  `json:"createTime"`
		Video      struct {
			Cover string `json:"cover"`
		} `json:"video"`
		Stats struct {
			DiggCount    int `json:"diggCount"`
			ShareCount   int `json:"shareCount"`
			PlayCount    int `json:"playCount"`
			CommentCount int `json:"commentCount"`
		} `json:"stats"`
	} `json:"itemList"`
	HasMore bool   `json:"hasMore"`
	Cursor  string `json:"cursor"`
}

// commentListResponse is the upstream shape of the comment listing endpoint
type commentListResponse struct {
	Comments []struct {
		CID             string `json:"cid"`
		Text            string `json:"text"`
		CreateTime      int64  `json:"create_time"`
		DiggCount       int    `json:"digg_count"`
		CommentLanguage string `json:"comment_language"`
		User            struct {
			Nickname    string     `json:"nickname"`
			AvatarThumb avatarURLs `json:"avatar_thumb"`
		} `json:"user"`
	} `json:"comments"`
	HasMore int   `json:"has_more"`
	Cursor  int64 `json:"cursor"`
}
