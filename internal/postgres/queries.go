package postgres

const (
	queryFindRoom = `SELECT doc FROM rooms WHERE room_id = $1`

	queryCreateRoom = `
		INSERT INTO rooms (room_id, session_id, status, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (room_id) DO NOTHING`

	querySaveRoom = `
		INSERT INTO rooms (room_id, session_id, status, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (room_id) DO UPDATE
		SET session_id = EXCLUDED.session_id,
		    status     = EXCLUDED.status,
		    doc        = EXCLUDED.doc,
		    updated_at = EXCLUDED.updated_at`

	queryUpsertDeviceStatus = `
		INSERT INTO devices (device_id, status, last_seen_at)
		VALUES ($1, $2, now())
		ON CONFLICT (device_id) DO UPDATE
		SET status = EXCLUDED.status, last_seen_at = EXCLUDED.last_seen_at`

	queryGetDevice = `SELECT device_id, status, last_seen_at FROM devices WHERE device_id = $1`

	queryRecordCall = `
		INSERT INTO call_history (room_id, session_id, started_at, ended_at, duration_sec, participants, chat_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id) DO NOTHING`

	queryListCalls = `
		SELECT room_id, session_id, started_at, ended_at, duration_sec, participants, chat_count
		FROM call_history
		WHERE room_id = $1
		  AND ($2::timestamptz IS NULL OR ended_at < $2
		       OR (ended_at = $2 AND session_id < $3::text))
		ORDER BY ended_at DESC, session_id DESC
		LIMIT $4`
)
